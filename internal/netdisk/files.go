package netdisk

import (
	"context"
	"net/http"
	"net/url"
)

// File endpoints.
const (
	fileListPath   = "/api/v2/file/list"
	fileDetailPath = "/api/v1/file/detail"
	fileInfosPath  = "/api/v1/file/infos"
	mkdirPath      = "/upload/v1/file/mkdir"
	movePath       = "/api/v1/file/move"
	trashPath      = "/api/v1/file/trash"
	deletePath     = "/api/v1/file/delete"
	uploadPath     = "/upload/v2/file/create"
)

// FileItem is one entry of a directory listing. Timestamps are passed
// through in the platform's "2006-01-02 15:04:05" local form.
type FileItem struct {
	FileID       int64  `json:"fileId"`
	Filename     string `json:"filename"`
	ParentFileID int64  `json:"parentFileId"`
	Type         int    `json:"type"`
	Etag         string `json:"etag"`
	Size         int64  `json:"size"`
	Category     int    `json:"category"`
	Status       int    `json:"status"`
	PunishFlag   int    `json:"punishFlag"`
	Trashed      int    `json:"trashed"`
	CreateAt     string `json:"createAt"`
	UpdateAt     string `json:"updateAt"`
}

// FileListPage is one page of a listing. LastFileID is -1 on the last page.
type FileListPage struct {
	LastFileID int64      `json:"lastFileId"`
	FileList   []FileItem `json:"fileList"`
}

// FileListQuery selects a page of a directory listing or a search.
type FileListQuery struct {
	ParentFileID int64   `form:"parentFileId"`
	Limit        int     `form:"limit"      binding:"required,min=1,max=100"`
	SearchData   *string `form:"searchData"`
	SearchMode   *int    `form:"searchMode" binding:"omitempty,oneof=0 1"`
	LastFileID   *int64  `form:"lastFileId"`
}

// Values implements Query.
func (q FileListQuery) Values() url.Values {
	return newQuery().
		int64("parentFileId", q.ParentFileID).
		int("limit", q.Limit).
		optText("searchData", q.SearchData).
		optInt("searchMode", q.SearchMode).
		optInt64("lastFileId", q.LastFileID).
		values()
}

// FileDetailQuery names a single file.
type FileDetailQuery struct {
	FileID int64 `form:"fileID" binding:"required"`
}

// Values implements Query.
func (q FileDetailQuery) Values() url.Values {
	return newQuery().int64("fileID", q.FileID).values()
}

// FileDetail describes one file.
type FileDetail struct {
	FileID       int64  `json:"fileID"`
	Filename     string `json:"filename"`
	ParentFileID int64  `json:"parentFileID"`
	Type         int    `json:"type"`
	Etag         string `json:"etag"`
	Size         int64  `json:"size"`
	Status       int    `json:"status"`
	CreateAt     string `json:"createAt"`
	Trashed      int    `json:"trashed"`
}

// FileIDs is the body of batch requests that only name files.
type FileIDs struct {
	FileIDs []int64 `json:"fileIds" binding:"required"`
}

// FileInfos is the result of a batch detail lookup.
type FileInfos struct {
	FileList []FileItem `json:"fileList"`
}

// MkdirRequest creates a directory under ParentID (0 is the root).
type MkdirRequest struct {
	Name     string `json:"name"     binding:"required"`
	ParentID int64  `json:"parentID"`
}

// MkdirResult carries the new directory id.
type MkdirResult struct {
	DirID int64 `json:"dirID"`
}

// MoveRequest moves files into ToParentFileID.
type MoveRequest struct {
	FileIDs        []int64 `json:"fileIDs"        binding:"required"`
	ToParentFileID int64   `json:"toParentFileID"`
}

// TrashRequest names files for trash or permanent deletion.
type TrashRequest struct {
	FileIDs []int64 `json:"fileIDs" binding:"required"`
}

// UploadRequest opens an upload session. Etag is the file's MD5.
type UploadRequest struct {
	ParentFileID int64  `json:"parentFileID"`
	Filename     string `json:"filename"             binding:"required"`
	Etag         string `json:"etag"                 binding:"required"`
	Size         int64  `json:"size"                 binding:"min=0"`
	Duplicate    *int   `json:"duplicate,omitempty"  binding:"omitempty,oneof=1 2"`
	ContainDir   *bool  `json:"containDir,omitempty"`
}

// UploadSession describes the upload slots. Reuse is true when the platform
// already holds identical content and no bytes need to be sent.
type UploadSession struct {
	FileID      int64    `json:"fileId"`
	Reuse       bool     `json:"reuse"`
	PreuploadID string   `json:"preuploadId"`
	SliceSize   int64    `json:"sliceSize"`
	Servers     []string `json:"servers"`
}

// ListFiles returns one page of a directory listing.
func (c *Client) ListFiles(ctx context.Context, token string, q FileListQuery) (*Envelope[FileListPage], error) {
	return Call[FileListPage](ctx, c, http.MethodGet, fileListPath, token, q)
}

// SearchFiles is ListFiles with a mandatory keyword.
func (c *Client) SearchFiles(ctx context.Context, token string, q FileListQuery) (*Envelope[FileListPage], error) {
	if q.SearchData == nil || *q.SearchData == "" {
		return nil, invalidf("searchData: keyword is required")
	}

	return c.ListFiles(ctx, token, q)
}

// FileDetail looks up a single file.
func (c *Client) FileDetail(ctx context.Context, token string, q FileDetailQuery) (*Envelope[FileDetail], error) {
	return Call[FileDetail](ctx, c, http.MethodGet, fileDetailPath, token, q)
}

// FileInfos looks up several files at once.
func (c *Client) FileInfos(ctx context.Context, token string, req FileIDs) (*Envelope[FileInfos], error) {
	if err := checkIDCount("fileIds", len(req.FileIDs)); err != nil {
		return nil, err
	}

	return Call[FileInfos](ctx, c, http.MethodPost, fileInfosPath, token, req)
}

// Mkdir creates a directory.
func (c *Client) Mkdir(ctx context.Context, token string, req MkdirRequest) (*Envelope[MkdirResult], error) {
	req.Name = normalizeName(req.Name)

	return Call[MkdirResult](ctx, c, http.MethodPost, mkdirPath, token, req)
}

// Move moves files to another directory.
func (c *Client) Move(ctx context.Context, token string, req MoveRequest) (*Envelope[Empty], error) {
	if err := checkIDCount("fileIDs", len(req.FileIDs)); err != nil {
		return nil, err
	}

	return Call[Empty](ctx, c, http.MethodPost, movePath, token, req)
}

// Trash moves files to the recycle bin.
func (c *Client) Trash(ctx context.Context, token string, req TrashRequest) (*Envelope[Empty], error) {
	if err := checkIDCount("fileIDs", len(req.FileIDs)); err != nil {
		return nil, err
	}

	return Call[Empty](ctx, c, http.MethodPost, trashPath, token, req)
}

// Delete permanently removes files that are already in the recycle bin.
func (c *Client) Delete(ctx context.Context, token string, req TrashRequest) (*Envelope[Empty], error) {
	if err := checkIDCount("fileIDs", len(req.FileIDs)); err != nil {
		return nil, err
	}

	return Call[Empty](ctx, c, http.MethodPost, deletePath, token, req)
}

// CreateUpload opens an upload session for a new file.
func (c *Client) CreateUpload(ctx context.Context, token string, req UploadRequest) (*Envelope[UploadSession], error) {
	req.Filename = normalizeName(req.Filename)

	return Call[UploadSession](ctx, c, http.MethodPost, uploadPath, token, req)
}
