// Package locale localizes response messages and month names. Indonesian is
// the default language; other languages are picked from Accept-Language.
package locale

import (
	"embed"
	"fmt"
	"io/fs"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/pelletier/go-toml/v2"
	"golang.org/x/text/language"

	"jjc-attendance/internal/logger"
)

//go:embed translation/*.toml
var translationFS embed.FS

const contextKey = "localizer"

// Bundle holds every parsed translation file.
type Bundle struct {
	bundle *i18n.Bundle
}

// NewBundle parses the embedded translation files.
func NewBundle() (*Bundle, error) {
	b := i18n.NewBundle(language.Indonesian)
	b.RegisterUnmarshalFunc("toml", toml.Unmarshal)

	err := fs.WalkDir(translationFS, "translation", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if _, err := b.LoadMessageFileFS(translationFS, path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &Bundle{bundle: b}, nil
}

// MustBundle is NewBundle for package initialization; embedded files are fixed at build time.
func MustBundle() *Bundle {
	b, err := NewBundle()
	if err != nil {
		panic(err)
	}
	return b
}

// Localizer resolves messages for one request.
type Localizer struct {
	l *i18n.Localizer
}

// For builds a localizer for the given Accept-Language values.
func (b *Bundle) For(langs ...string) *Localizer {
	return &Localizer{l: i18n.NewLocalizer(b.bundle, langs...)}
}

// Message localizes key. Unknown keys are returned unchanged.
func (l *Localizer) Message(key string) string {
	msg, err := l.l.Localize(&i18n.LocalizeConfig{MessageID: key})
	if err != nil {
		logger.Debugf("no translation for %s: %v", key, err)
		return key
	}
	return msg
}

// MonthYear renders a calendar month for display, e.g. "Februari 2024".
func (l *Localizer) MonthYear(year int, month time.Month) string {
	return l.Message("month."+strconv.Itoa(int(month))) + " " + strconv.Itoa(year)
}

// Middleware stores a request-scoped Localizer in the gin context.
func (b *Bundle) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		var lang string
		if cookie, err := c.Request.Cookie("lang"); err == nil {
			lang = cookie.Value
		} else {
			lang = c.GetHeader("Accept-Language")
		}
		c.Set(contextKey, b.For(lang))
		c.Next()
	}
}

// FromContext returns the request localizer, or the default-language one when
// the middleware did not run.
func FromContext(c *gin.Context) *Localizer {
	if v, ok := c.Get(contextKey); ok {
		if l, ok := v.(*Localizer); ok {
			return l
		}
	}
	return defaultBundle.For()
}

var defaultBundle = MustBundle()
