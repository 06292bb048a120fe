package netdisk

import (
	"context"
	"net/http"
	"net/url"
)

// Share endpoints.
const (
	shareCreatePath     = "/api/v1/share/create"
	shareListPath       = "/api/v1/share/list"
	shareUpdatePath     = "/api/v1/share/list/info"
	paidShareCreatePath = "/api/v1/share/content-payment/create"
	paidShareUpdatePath = "/api/v1/share/list/payment/info"
	paidShareListPath   = "/api/v1/share/payment/list"
)

// ShareRequest creates a share link. ShareExpire is in days; 0 never
// expires. FileIDList is a comma-separated list of at most 100 ids.
type ShareRequest struct {
	ShareName          string  `json:"shareName"                    binding:"required"`
	ShareExpire        int     `json:"shareExpire"                  binding:"oneof=0 1 7 30"`
	FileIDList         string  `json:"fileIDList"                   binding:"required"`
	SharePwd           *string `json:"sharePwd,omitempty"`
	TrafficSwitch      *int    `json:"trafficSwitch,omitempty"      binding:"omitempty,oneof=1 2 3 4"`
	TrafficLimitSwitch *int    `json:"trafficLimitSwitch,omitempty" binding:"omitempty,oneof=1 2"`
	TrafficLimit       *int64  `json:"trafficLimit,omitempty"`
}

// ShareCreated identifies a new share link.
type ShareCreated struct {
	ShareID  int64  `json:"shareID"`
	ShareKey string `json:"shareKey"`
}

// ShareListQuery pages through share links.
type ShareListQuery struct {
	Limit       int    `form:"limit"       binding:"required,min=1,max=100"`
	LastShareID *int64 `form:"lastShareId"`
}

// Values implements Query.
func (q ShareListQuery) Values() url.Values {
	return newQuery().
		int("limit", q.Limit).
		optInt64("lastShareId", q.LastShareID).
		values()
}

// ShareInfo describes a free share link.
type ShareInfo struct {
	ShareID            int64  `json:"shareId"`
	ShareKey           string `json:"shareKey"`
	ShareName          string `json:"shareName"`
	Expiration         string `json:"expiration"`
	Expired            int    `json:"expired"`
	SharePwd           string `json:"sharePwd"`
	TrafficSwitch      int    `json:"trafficSwitch"`
	TrafficLimitSwitch int    `json:"trafficLimitSwitch"`
	TrafficLimit       int64  `json:"trafficLimit"`
	BytesCharge        int64  `json:"bytesCharge"`
	PreviewCount       int    `json:"previewCount"`
	DownloadCount      int    `json:"downloadCount"`
	SaveCount          int    `json:"saveCount"`
}

// ShareListPage is one page of share links. LastShareID is -1 on the last page.
type ShareListPage struct {
	LastShareID int64       `json:"lastShareId"`
	ShareList   []ShareInfo `json:"shareList"`
}

// ShareUpdate changes traffic settings of existing share links.
type ShareUpdate struct {
	ShareIDList        []int64 `json:"shareIdList"                  binding:"required"`
	TrafficSwitch      *int    `json:"trafficSwitch,omitempty"      binding:"omitempty,oneof=1 2 3 4"`
	TrafficLimitSwitch *int    `json:"trafficLimitSwitch,omitempty" binding:"omitempty,oneof=1 2"`
	TrafficLimit       *int64  `json:"trafficLimit,omitempty"`
}

// PaidShareRequest creates a paid share link. PayAmount is in whole yuan.
type PaidShareRequest struct {
	ShareName          string  `json:"shareName"                    binding:"required"`
	FileIDList         string  `json:"fileIDList"                   binding:"required"`
	PayAmount          int     `json:"payAmount"                    binding:"min=1,max=99"`
	IsReward           *int    `json:"isReward,omitempty"           binding:"omitempty,oneof=0 1"`
	ResourceDesc       *string `json:"resourceDesc,omitempty"`
	TrafficSwitch      *int    `json:"trafficSwitch,omitempty"      binding:"omitempty,oneof=1 2 3 4"`
	TrafficLimitSwitch *int    `json:"trafficLimitSwitch,omitempty" binding:"omitempty,oneof=1 2"`
	TrafficLimit       *int64  `json:"trafficLimit,omitempty"`
}

// PaidShareInfo describes a paid share link.
type PaidShareInfo struct {
	ShareID            int64  `json:"shareId"`
	ShareKey           string `json:"shareKey"`
	ShareName          string `json:"shareName"`
	PayAmount          int    `json:"payAmount"`
	Amount             int    `json:"amount"`
	Expiration         string `json:"expiration"`
	Expired            int    `json:"expired"`
	TrafficSwitch      int    `json:"trafficSwitch"`
	TrafficLimitSwitch int    `json:"trafficLimitSwitch"`
	TrafficLimit       int64  `json:"trafficLimit"`
	BytesCharge        int64  `json:"bytesCharge"`
	PreviewCount       int    `json:"previewCount"`
	DownloadCount      int    `json:"downloadCount"`
	SaveCount          int    `json:"saveCount"`
}

// PaidShareListPage is one page of paid share links.
type PaidShareListPage struct {
	LastShareID int64           `json:"lastShareId"`
	ShareList   []PaidShareInfo `json:"shareList"`
}

// CreateShare creates a free share link.
func (c *Client) CreateShare(ctx context.Context, token string, req ShareRequest) (*Envelope[ShareCreated], error) {
	if err := checkIDList("fileIDList", req.FileIDList); err != nil {
		return nil, err
	}

	req.ShareName = normalizeName(req.ShareName)

	return Call[ShareCreated](ctx, c, http.MethodPost, shareCreatePath, token, req)
}

// ListShares returns one page of free share links.
func (c *Client) ListShares(ctx context.Context, token string, q ShareListQuery) (*Envelope[ShareListPage], error) {
	return Call[ShareListPage](ctx, c, http.MethodGet, shareListPath, token, q)
}

// UpdateShares changes traffic settings of free share links.
func (c *Client) UpdateShares(ctx context.Context, token string, req ShareUpdate) (*Envelope[Empty], error) {
	if err := checkIDCount("shareIdList", len(req.ShareIDList)); err != nil {
		return nil, err
	}

	return Call[Empty](ctx, c, http.MethodPut, shareUpdatePath, token, req)
}

// CreatePaidShare creates a paid share link.
func (c *Client) CreatePaidShare(ctx context.Context, token string, req PaidShareRequest) (*Envelope[ShareCreated], error) {
	if err := checkIDList("fileIDList", req.FileIDList); err != nil {
		return nil, err
	}

	req.ShareName = normalizeName(req.ShareName)

	return Call[ShareCreated](ctx, c, http.MethodPost, paidShareCreatePath, token, req)
}

// UpdatePaidShares changes traffic settings of paid share links.
func (c *Client) UpdatePaidShares(ctx context.Context, token string, req ShareUpdate) (*Envelope[Empty], error) {
	if err := checkIDCount("shareIdList", len(req.ShareIDList)); err != nil {
		return nil, err
	}

	return Call[Empty](ctx, c, http.MethodPut, paidShareUpdatePath, token, req)
}

// ListPaidShares returns one page of paid share links.
func (c *Client) ListPaidShares(ctx context.Context, token string, q ShareListQuery) (*Envelope[PaidShareListPage], error) {
	return Call[PaidShareListPage](ctx, c, http.MethodGet, paidShareListPath, token, q)
}
