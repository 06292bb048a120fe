package netdisk

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPlatform = "open_platform"

// newTestClient starts a TLS stub platform and returns a client pointed at it.
func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()

	srv := httptest.NewTLSServer(handler)
	t.Cleanup(srv.Close)

	cfg := PlatformConfig{Domain: strings.TrimPrefix(srv.URL, "https://"), Header: testPlatform}

	return NewClient(cfg, srv.Client(), slog.New(slog.NewTextHandler(io.Discard, nil))), srv
}

func writeJSON(t *testing.T, w http.ResponseWriter, status int, body string) {
	t.Helper()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err := io.WriteString(w, body)
	assert.NoError(t, err)
}

func TestCall_ForbiddenReturnsRequestError(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(t, w, http.StatusForbidden, `{"error":"forbidden"}`)
	})

	env, err := Call[UserInfo](context.Background(), c, http.MethodGet, "/api/v1/user/info", "abc", nil)
	require.Error(t, err)
	assert.Nil(t, env)

	var reqErr *RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, http.StatusForbidden, reqErr.StatusCode)
	assert.Equal(t, `{"error":"forbidden"}`, reqErr.Body)
	assert.ErrorIs(t, err, ErrAPIRequestFailed)
	assert.NotErrorIs(t, err, ErrAuthRequestFailed)
	assert.NotErrorIs(t, err, ErrDecode)
}

func TestCall_AttachesAuthAndPlatformHeaders(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer abc", r.Header.Get("Authorization"))
		assert.Equal(t, testPlatform, r.Header.Get("Platform"))
		assert.Equal(t, userAgent, r.Header.Get("User-Agent"))
		assert.Empty(t, r.Header.Get("Content-Type"))
		writeJSON(t, w, http.StatusOK, `{"code":0,"message":"ok","data":{"uid":7,"nickname":"n"},"x-traceID":"t-1"}`)
	})

	env, err := c.UserInfo(context.Background(), "abc")
	require.NoError(t, err)
	assert.Equal(t, 0, env.Code)
	assert.Equal(t, "t-1", env.TraceID)
	require.NotNil(t, env.Data)
	assert.Equal(t, int64(7), env.Data.UID)
}

func TestCall_OmitsAbsentOptionalQueryValues(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/v2/file/list", r.URL.Path)

		q := r.URL.Query()
		assert.Equal(t, "0", q.Get("parentFileId"))
		assert.Equal(t, "100", q.Get("limit"))

		for _, key := range []string{"searchData", "searchMode", "lastFileId"} {
			_, present := q[key]
			assert.False(t, present, "%s must not be sent", key)
		}

		assert.NotContains(t, r.URL.RawQuery, "searchData")
		writeJSON(t, w, http.StatusOK, `{"code":0,"message":"ok","data":{"lastFileId":-1,"fileList":[]},"x-traceID":"t"}`)
	})

	env, err := c.ListFiles(context.Background(), "abc", FileListQuery{ParentFileID: 0, Limit: 100})
	require.NoError(t, err)
	require.NotNil(t, env.Data)
	assert.Equal(t, int64(-1), env.Data.LastFileID)
}

func TestCall_SendsSuppliedOptionalQueryValues(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "report", q.Get("searchData"))
		assert.Equal(t, "1", q.Get("searchMode"))
		assert.Equal(t, "42", q.Get("lastFileId"))
		writeJSON(t, w, http.StatusOK, `{"code":0,"message":"ok","data":null,"x-traceID":"t"}`)
	})

	keyword, mode, last := "report", 1, int64(42)
	_, err := c.ListFiles(context.Background(), "abc", FileListQuery{
		Limit:      10,
		SearchData: &keyword,
		SearchMode: &mode,
		LastFileID: &last,
	})
	require.NoError(t, err)
}

func TestCall_WriteMethodSendsJSONBody(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/file/move", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Empty(t, r.URL.RawQuery)

		var got MoveRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		assert.Equal(t, []int64{1, 2}, got.FileIDs)
		assert.Equal(t, int64(9), got.ToParentFileID)
		writeJSON(t, w, http.StatusOK, `{"code":0,"message":"ok","data":null,"x-traceID":"t"}`)
	})

	env, err := c.Move(context.Background(), "abc", MoveRequest{FileIDs: []int64{1, 2}, ToParentFileID: 9})
	require.NoError(t, err)
	assert.Nil(t, env.Data)
}

func TestCall_ReturnsApplicationErrorEnvelopeUnchanged(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(t, w, http.StatusOK, `{"code":401,"message":"token expired","data":null,"x-traceID":"t-9"}`)
	})

	env, err := c.UserInfo(context.Background(), "abc")
	require.NoError(t, err)
	assert.Equal(t, 401, env.Code)
	assert.Equal(t, "token expired", env.Message)
	assert.Nil(t, env.Data)
	assert.Equal(t, "t-9", env.TraceID)
}

func TestCall_UndecodableBodyReturnsDecodeError(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(t, w, http.StatusOK, `<html>maintenance</html>`)
	})

	_, err := c.UserInfo(context.Background(), "abc")
	require.Error(t, err)

	var decErr *DecodeError
	require.ErrorAs(t, err, &decErr)
	assert.Equal(t, "<html>maintenance</html>", decErr.Raw)
	assert.ErrorIs(t, err, ErrDecode)
	assert.NotErrorIs(t, err, ErrAPIRequestFailed)
}

func TestCall_TransportFailure(t *testing.T) {
	c, srv := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	srv.Close()

	_, err := c.UserInfo(context.Background(), "abc")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTransport)

	var reqErr *RequestError
	assert.False(t, errors.As(err, &reqErr))
}

func TestCall_SendsExactlyOnce(t *testing.T) {
	var hits atomic.Int32

	c, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		writeJSON(t, w, http.StatusServiceUnavailable, "busy")
	})

	_, err := c.UserInfo(context.Background(), "abc")
	require.ErrorIs(t, err, ErrAPIRequestFailed)
	assert.Equal(t, int32(1), hits.Load())
}

func TestCall_ReadMethodRejectsNonQueryParams(t *testing.T) {
	var hits atomic.Int32

	c, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
	})

	_, err := Call[Empty](context.Background(), c, http.MethodGet, "/x", "abc", map[string]string{"a": "b"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot be sent as a query")
	assert.Zero(t, hits.Load())
}

func TestSearchFiles_RequiresKeyword(t *testing.T) {
	var hits atomic.Int32

	c, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
	})

	empty := ""
	_, err := c.SearchFiles(context.Background(), "abc", FileListQuery{Limit: 10, SearchData: &empty})
	require.ErrorIs(t, err, ErrInvalidRequest)
	assert.Zero(t, hits.Load())
}

func TestMkdir_NormalizesNameToNFC(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var got MkdirRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		assert.Equal(t, "caf\u00e9", got.Name)
		writeJSON(t, w, http.StatusOK, `{"code":0,"message":"ok","data":{"dirID":5},"x-traceID":"t"}`)
	})

	env, err := c.Mkdir(context.Background(), "abc", MkdirRequest{Name: "cafe\u0301"})
	require.NoError(t, err)
	require.NotNil(t, env.Data)
	assert.Equal(t, int64(5), env.Data.DirID)
}

func TestUpdateShares_UsesPut(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/api/v1/share/list/info", r.URL.Path)
		writeJSON(t, w, http.StatusOK, `{"code":0,"message":"ok","data":null,"x-traceID":"t"}`)
	})

	_, err := c.UpdateShares(context.Background(), "abc", ShareUpdate{ShareIDList: []int64{3}})
	require.NoError(t, err)
}

func TestCreateShare_RejectsOversizedIDList(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		t.Error("request must not be sent")
	})

	ids := make([]string, maxIDsPerRequest+1)
	for i := range ids {
		ids[i] = "1"
	}

	_, err := c.CreateShare(context.Background(), "abc", ShareRequest{
		ShareName:  "docs",
		FileIDList: strings.Join(ids, ","),
	})
	require.ErrorIs(t, err, ErrInvalidRequest)
}
