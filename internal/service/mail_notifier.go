package service

import (
	"context"
	"fmt"
	"html"
	"strings"

	"research-approval/backend/internal/repository"
	"research-approval/backend/pkg/mailer"
)

// MailNotifier 按收件人邮箱发送邮件通知
type MailNotifier struct {
	sender  mailer.Sender
	users   repository.UserRepository
	baseURL string
}

// NewMailNotifier 创建邮件渠道
func NewMailNotifier(sender mailer.Sender, users repository.UserRepository, baseURL string) *MailNotifier {
	return &MailNotifier{
		sender:  sender,
		users:   users,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

func (n *MailNotifier) Notify(ctx context.Context, msg Message) error {
	user, err := n.users.GetByID(ctx, msg.RecipientID)
	if err != nil {
		return fmt.Errorf("查询收件人失败: %w", err)
	}
	if user.Email == "" {
		return nil
	}
	return n.sender.Send(ctx, []string{user.Email}, msg.Title, n.render(user.Name, msg))
}

func (n *MailNotifier) render(name string, msg Message) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<p>%s，您好：</p>", html.EscapeString(name))
	fmt.Fprintf(&b, "<p>%s</p>", html.EscapeString(msg.Body))
	if n.baseURL != "" && msg.ContextID != "" {
		link := fmt.Sprintf("%s/%ss/%s", n.baseURL, msg.ContextType, msg.ContextID)
		fmt.Fprintf(&b, `<p><a href="%s">查看详情</a></p>`, html.EscapeString(link))
	}
	return b.String()
}
