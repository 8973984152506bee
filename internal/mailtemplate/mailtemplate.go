// Package mailtemplate renders the mail a client sends to a project manager.
package mailtemplate

import (
	"bytes"
	"embed"
	"fmt"
	htmltemplate "html/template"
	"strings"
	texttemplate "text/template"
	"time"
)

//go:embed templates/*.tmpl
var files embed.FS

var (
	htmlTmpl = htmltemplate.Must(htmltemplate.ParseFS(files, "templates/manager_request.html.tmpl"))
	textTmpl = texttemplate.Must(texttemplate.ParseFS(files, "templates/manager_request.txt.tmpl"))
)

// DefaultSubject 请求未指定主题时使用
const DefaultSubject = "New Project Message"

// ReceivedLayout 邮件中时间戳的格式
const ReceivedLayout = "Jan 2, 2006 15:04:05 MST"

// ManagerRequest 模板数据，所有字段都按纯文本处理，HTML 中会被转义
type ManagerRequest struct {
	Subject      string
	ManagerName  string
	ClientName   string
	ClientEmail  string
	Message      string
	ReceivedAt   time.Time
	AppName      string
	DashboardURL string
}

type view struct {
	ManagerRequest
	Received string
}

// Rendered 渲染结果
type Rendered struct {
	Subject string
	HTML    string
	Text    string
}

// Render 渲染 HTML 和纯文本两个版本
func Render(data ManagerRequest) (Rendered, error) {
	if strings.TrimSpace(data.Subject) == "" {
		data.Subject = DefaultSubject
	}
	if data.ManagerName == "" {
		data.ManagerName = "Manager"
	}
	if data.AppName == "" {
		data.AppName = "BIM"
	}
	v := view{ManagerRequest: data, Received: data.ReceivedAt.Format(ReceivedLayout)}

	var html, text bytes.Buffer
	if err := htmlTmpl.Execute(&html, v); err != nil {
		return Rendered{}, fmt.Errorf("render html body: %w", err)
	}
	if err := textTmpl.Execute(&text, v); err != nil {
		return Rendered{}, fmt.Errorf("render text body: %w", err)
	}

	return Rendered{
		Subject: data.Subject,
		HTML:    html.String(),
		Text:    strings.TrimSpace(text.String()),
	}, nil
}
