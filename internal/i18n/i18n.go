// Package i18n localizes the strings the clients show: toasts, button
// states, and the admin totals. Spanish is the default.
package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

//go:embed locales/*.toml
var locales embed.FS

// Message ids.
const (
	RSVPSubmit         = "rsvp_submit"
	RSVPProcessing     = "rsvp_processing"
	RSVPSent           = "rsvp_sent"
	RSVPError          = "rsvp_error"
	GuestbookSubmit    = "guestbook_submit"
	GuestbookSending   = "guestbook_sending"
	GuestbookSent      = "guestbook_sent"
	GuestbookError     = "guestbook_error"
	GuestbookEmpty     = "guestbook_empty"
	UploadProcessing   = "upload_processing"
	UploadProgress     = "upload_progress"
	UploadDone         = "upload_done"
	UploadFailed       = "upload_failed"
	GalleryEmpty       = "gallery_empty"
	CountdownDone      = "countdown_done"
	ViewLoadFailed     = "view_load_failed"
	AdminPrompt        = "admin_prompt"
	AdminWrongPassword = "admin_wrong_password"
	AdminLoading       = "admin_loading"
	AdminTotalPasses   = "admin_total_passes"
	AdminConfirmed     = "admin_confirmed"
	AdminDeclined      = "admin_declined"
)

var supported = []language.Tag{language.Spanish, language.English}

var (
	bundleOnce sync.Once
	bundle     *i18n.Bundle
	bundleErr  error
)

func loadBundle() (*i18n.Bundle, error) {
	bundleOnce.Do(func() {
		b := i18n.NewBundle(supported[0])
		b.RegisterUnmarshalFunc("toml", toml.Unmarshal)
		files, err := fs.Glob(locales, "locales/*.toml")
		if err != nil {
			bundleErr = err
			return
		}
		for _, f := range files {
			if _, err := b.LoadMessageFileFS(locales, f); err != nil {
				bundleErr = fmt.Errorf("loading %s: %w", f, err)
				return
			}
		}
		bundle = b
	})
	return bundle, bundleErr
}

// Supported lists the languages with a catalog, default first.
func Supported() []language.Tag {
	out := make([]language.Tag, len(supported))
	copy(out, supported)
	return out
}

// Translator renders messages in one language.
type Translator struct {
	loc  *i18n.Localizer
	lang language.Tag
}

// New picks the best supported language for the given preferences, which
// may be BCP 47 tags or Accept-Language values.
func New(prefs ...string) (*Translator, error) {
	b, err := loadBundle()
	if err != nil {
		return nil, err
	}
	_, idx := language.MatchStrings(language.NewMatcher(supported), prefs...)
	lang := supported[idx]
	return &Translator{loc: i18n.NewLocalizer(b, lang.String()), lang: lang}, nil
}

// Language is the language messages are rendered in.
func (t *Translator) Language() language.Tag { return t.lang }

// T renders message id. Unknown ids come back unchanged.
func (t *Translator) T(id string, data ...map[string]any) string {
	cfg := &i18n.LocalizeConfig{MessageID: id}
	if len(data) > 0 {
		cfg.TemplateData = data[0]
	}
	s, err := t.loc.Localize(cfg)
	if err != nil {
		return id
	}
	return s
}

// Plural renders a counted message; the count is available as {{.Count}}.
func (t *Translator) Plural(id string, count int) string {
	s, err := t.loc.Localize(&i18n.LocalizeConfig{
		MessageID:    id,
		PluralCount:  count,
		TemplateData: map[string]any{"Count": count},
	})
	if err != nil {
		return id
	}
	return s
}
