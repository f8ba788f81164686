package email

import (
	"github.com/cagandemirsamli/personalassistant/core"
	"github.com/cagandemirsamli/personalassistant/tool"
)

type accountArgs struct {
	AccountName string `json:"account_name" description:"A label for the account (e.g. personal, school)"`
}

type listArgs struct {
	AccountName string `json:"account_name" description:"The account to check"`
	MaxResults  *int   `json:"max_results,omitempty" description:"Maximum number of emails to return"`
}

type searchArgs struct {
	AccountName string `json:"account_name" description:"The account to search"`
	Query       string `json:"query" description:"Search terms: is:unread, from:<sender>, subject:<text> or free text"`
	MaxResults  *int   `json:"max_results,omitempty" description:"Maximum number of emails to return (default 10)"`
}

type senderArgs struct {
	AccountName string `json:"account_name" description:"The account to search"`
	Sender      string `json:"sender" description:"The sender's email or name"`
	MaxResults  *int   `json:"max_results,omitempty" description:"Maximum number of emails to return (default 10)"`
}

type contentArgs struct {
	AccountName string `json:"account_name" description:"The account containing the email"`
	EmailID     string `json:"email_id" description:"The email's ID from previous results"`
}

// All returns the email tools in catalog order.
func (t *Tools) All() []tool.Tool {
	return []tool.Tool{
		tool.NewTypedTool("connect_account", "Connect to a mail account. Must be called before accessing emails.",
			func(tc *core.ToolContext, a accountArgs) (string, error) {
				return t.ConnectAccount(tc.Context(), a.AccountName), nil
			}),
		tool.NewTypedTool("list_connected_accounts", "List all currently connected mail accounts.",
			func(_ *core.ToolContext, _ struct{}) (string, error) {
				return t.ListConnectedAccounts(), nil
			}),
		tool.NewTypedTool("get_unread_emails", "Get unread emails from a connected account (default 10).",
			func(tc *core.ToolContext, a listArgs) (string, error) {
				return t.GetUnreadEmails(tc.Context(), a.AccountName, limit(a.MaxResults)), nil
			}),
		tool.NewTypedTool("get_recent_emails", "Get the most recent emails from a connected account (default 10).",
			func(tc *core.ToolContext, a listArgs) (string, error) {
				return t.GetRecentEmails(tc.Context(), a.AccountName, limit(a.MaxResults)), nil
			}),
		tool.NewTypedTool("search_emails", "Search emails by query.",
			func(tc *core.ToolContext, a searchArgs) (string, error) {
				return t.SearchEmails(tc.Context(), a.AccountName, a.Query, limit(a.MaxResults)), nil
			}),
		tool.NewTypedTool("get_email_content", "Get the full content of a specific email.",
			func(tc *core.ToolContext, a contentArgs) (string, error) {
				return t.GetEmailContent(tc.Context(), a.AccountName, a.EmailID), nil
			}),
		tool.NewTypedTool("check_important_emails",
			"Check unread emails for important ones: assignment, deadline, exam, urgent, important, etc. Scans 20 by default.",
			func(tc *core.ToolContext, a listArgs) (string, error) {
				return t.CheckImportantEmails(tc.Context(), a.AccountName, limit(a.MaxResults)), nil
			}),
		tool.NewTypedTool("get_emails_from_sender", "Get emails from a specific sender.",
			func(tc *core.ToolContext, a senderArgs) (string, error) {
				return t.GetEmailsFromSender(tc.Context(), a.AccountName, a.Sender, limit(a.MaxResults)), nil
			}),
	}
}

func limit(n *int) int {
	if n == nil {
		return 0
	}
	return *n
}
