package models

import (
	"github.com/a-h/templ"

	"github.com/FACorreiaa/moxc-web/internal/app/notify"
)

type NavItem struct {
	Name string
	URL  string
}

type Navigation struct {
	Items []NavItem
}

type LayoutTempl struct {
	Title         string
	SignedIn      bool
	Nav           Navigation
	ActiveNav     string
	Notifications []notify.Notification
	Content       templ.Component
}

var MainNav = Navigation{
	Items: []NavItem{
		{Name: "首页", URL: "/index"},
		{Name: "选择测试", URL: "/select-test"},
		{Name: "我的", URL: "/home"},
	},
}

var OfflineNav = Navigation{
	Items: []NavItem{
		{Name: "首页", URL: "/index"},
		{Name: "登录", URL: "/login"},
	},
}
