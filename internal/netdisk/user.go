package netdisk

import (
	"context"
	"net/http"
)

const userInfoPath = "/api/v1/user/info"

// UserInfo describes the account behind the client credentials.
type UserInfo struct {
	UID            int64  `json:"uid"`
	Nickname       string `json:"nickname"`
	HeadImage      string `json:"headImage"`
	Passport       string `json:"passport"`
	Mail           string `json:"mail"`
	SpaceUsed      int64  `json:"spaceUsed"`
	SpacePermanent int64  `json:"spacePermanent"`
	SpaceTemp      int64  `json:"spaceTemp"`
	SpaceTempExpr  string `json:"spaceTempExpr"`
	Vip            bool   `json:"vip"`
	DirectTraffic  int64  `json:"directTraffic"`
	IsHideUID      bool   `json:"isHideUID"`
}

// UserInfo returns the account profile and quota.
func (c *Client) UserInfo(ctx context.Context, token string) (*Envelope[UserInfo], error) {
	return Call[UserInfo](ctx, c, http.MethodGet, userInfoPath, token, nil)
}
