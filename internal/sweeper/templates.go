package sweeper

import (
	"bytes"
	"fmt"
	"text/template"
	"time"
)

// noticeData contains data for rendering owner-facing notices.
type noticeData struct {
	Owner           string
	AccountLabel    string
	KeyCount        int
	WarnAfterDays   int
	DeleteAfterDays int
	RunCadenceDays  int
	SupportAddress  string
	GuideURL        string
	Keys            []noticeKey
}

// noticeKey is one key line in a notice body.
type noticeKey struct {
	ID        string
	Owner     string
	CreatedOn string
	AgeDays   int
}

var warnNotice = template.Must(template.New("warn_notice").Parse(warnNoticeTemplate))

const warnNoticeTemplate = `Dear {{.Owner}},

this is an automatic reminder to rotate your AWS access keys at least every {{.WarnAfterDays}} days.

At the moment, you have {{.KeyCount}} key(s) on the account {{.AccountLabel}} that were created more than {{.WarnAfterDays}} days ago:
{{range .Keys}}- {{.ID}} was created on {{.CreatedOn}} ({{.AgeDays}} days ago)
{{end}}
Keys are revoked automatically once they are {{.DeleteAfterDays}} days old.

To learn how to rotate an AWS access key, please read the official guide at
{{.GuideURL}}
{{if .SupportAddress}}If you have any question, please contact {{.SupportAddress}}.
{{end}}
This reminder will be sent again in {{.RunCadenceDays}} day(s) if the key(s) are not rotated.`

var deleteNotice = template.Must(template.New("delete_notice").Parse(deleteNoticeTemplate))

const deleteNoticeTemplate = `Dear {{.Owner}},

the following {{.KeyCount}} access key(s) on the account {{.AccountLabel}} exceeded the maximum allowed age of {{.DeleteAfterDays}} days and are being revoked now:
{{range .Keys}}- {{.ID}} was created on {{.CreatedOn}} ({{.AgeDays}} days ago)
{{end}}
Anything still authenticating with these keys will lose access. To restore
programmatic access, create a new key and update your tooling; the official
guide is at
{{.GuideURL}}
{{if .SupportAddress}}If you believe this was revoked in error, please contact {{.SupportAddress}}.
{{end}}`

var digestNotice = template.Must(template.New("digest_notice").Parse(digestNoticeTemplate))

const digestNoticeTemplate = `Access key sweep completed on account {{.AccountLabel}}.

{{.KeyCount}} key(s) exceeded the maximum allowed age and were revoked:
{{range .Keys}}- {{.ID}} (owner {{.Owner}}, created on {{.CreatedOn}})
{{end}}`

func warnSubject(accountLabel string) string {
	return fmt.Sprintf("Remember to rotate your AWS access keys on account %s", accountLabel)
}

func deleteSubject(accountLabel string) string {
	return fmt.Sprintf("AWS access keys on account %s have been revoked", accountLabel)
}

func digestSubject(accountLabel string) string {
	return fmt.Sprintf("Access key sweep digest for account %s", accountLabel)
}

// noticeData builds the template payload for one batch.
func (s *Sweeper) noticeData(batch Batch, accountLabel string, now time.Time) noticeData {
	data := noticeData{
		Owner:           batch.Owner,
		AccountLabel:    accountLabel,
		KeyCount:        len(batch.Keys),
		WarnAfterDays:   s.config.WarnAfterDays,
		DeleteAfterDays: s.config.DeleteAfterDays,
		RunCadenceDays:  s.config.RunCadenceDays,
		SupportAddress:  s.config.SupportAddress,
		GuideURL:        rotateKeysGuideURL,
		Keys:            make([]noticeKey, 0, len(batch.Keys)),
	}
	for _, k := range batch.Keys {
		data.Keys = append(data.Keys, noticeKey{
			ID:        k.AccessKeyID,
			Owner:     k.UserName,
			CreatedOn: k.CreateDate.Format(noticeDateLayout),
			AgeDays:   k.AgeDays(now),
		})
	}
	return data
}

// digestData builds the template payload for the admin digest.
func digestData(accountLabel string, deleted []DeletedKey) noticeData {
	data := noticeData{
		AccountLabel: accountLabel,
		KeyCount:     len(deleted),
		Keys:         make([]noticeKey, 0, len(deleted)),
	}
	for _, k := range deleted {
		data.Keys = append(data.Keys, noticeKey{
			ID:        k.AccessKeyID,
			Owner:     k.Owner,
			CreatedOn: k.CreatedOn,
		})
	}
	return data
}

func render(tmpl *template.Template, data noticeData) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("rendering %s: %w", tmpl.Name(), err)
	}
	return buf.String(), nil
}
