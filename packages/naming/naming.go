// Package naming expands {token} templates in output file names, so one
// settings value can name every panel's capture distinctly.
package naming

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Context carries the per-capture values tokens draw from.
type Context struct {
	Panel  string
	Camera string
	Frame  int
	Width  int
	Height int
	Filter string
	Mode   string

	// Now anchors the date and time tokens. The zero value means the
	// current time.
	Now time.Time
}

// Func produces the replacement text for one token. arg is the text after
// the colon in {token:arg}, empty when absent.
type Func func(ctx Context, arg string) string

// Registry maps token names to their expansion functions.
type Registry struct {
	funcs map[string]Func
}

// NewRegistry creates a registry with the default tokens registered.
func NewRegistry() *Registry {
	r := &Registry{
		funcs: make(map[string]Func),
	}
	r.registerDefaults()
	return r
}

func (r *Registry) registerDefaults() {
	r.funcs["panel"] = tokenPanel
	r.funcs["camera"] = tokenCamera
	r.funcs["frame"] = tokenFrame
	r.funcs["date"] = tokenDate
	r.funcs["time"] = tokenTime
	r.funcs["datetime"] = tokenDatetime
	r.funcs["uuid"] = tokenUUID
	r.funcs["width"] = tokenWidth
	r.funcs["height"] = tokenHeight
	r.funcs["res"] = tokenRes
	r.funcs["filter"] = tokenFilter
	r.funcs["mode"] = tokenMode
	r.funcs["user"] = tokenUser
}

// Register adds or replaces a token.
func (r *Registry) Register(name string, fn Func) {
	r.funcs[name] = fn
}

var tokenPattern = regexp.MustCompile(`\{(\w+)(?::([^{}]+))?\}`)

// Expand replaces every known {token} in template. Unknown tokens are left
// untouched. Replacement text is sanitized for use in file names.
func (r *Registry) Expand(template string, ctx Context) string {
	if ctx.Now.IsZero() {
		ctx.Now = time.Now()
	}

	return tokenPattern.ReplaceAllStringFunc(template, func(match string) string {
		parts := tokenPattern.FindStringSubmatch(match)
		fn, ok := r.funcs[parts[1]]
		if !ok {
			return match
		}
		return Sanitize(fn(ctx, parts[2]))
	})
}

var defaultRegistry = NewRegistry()

// Expand replaces tokens using the default registry.
func Expand(template string, ctx Context) string {
	return defaultRegistry.Expand(template, ctx)
}

// HasTokens reports whether s contains anything shaped like a {token}.
func HasTokens(s string) bool {
	return tokenPattern.MatchString(s)
}

var sanitizer = strings.NewReplacer(
	"|", "_", ":", "_", "/", "_", "\\", "_", " ", "_",
)

// Sanitize flattens path and namespace separators so token output stays a
// single file name component.
func Sanitize(s string) string {
	return sanitizer.Replace(s)
}

func tokenPanel(ctx Context, _ string) string {
	return ctx.Panel
}

func tokenCamera(ctx Context, _ string) string {
	if ctx.Camera == "" {
		return ctx.Panel
	}
	return ctx.Camera
}

func tokenFrame(ctx Context, arg string) string {
	width := 4
	if arg != "" {
		if v, err := strconv.Atoi(arg); err == nil && v > 0 {
			width = v
		}
	}
	return fmt.Sprintf("%0*d", width, ctx.Frame)
}

func tokenDate(ctx Context, arg string) string {
	layout := "2006-01-02"
	if arg != "" {
		layout = arg
	}
	return ctx.Now.Format(layout)
}

func tokenTime(ctx Context, _ string) string {
	return ctx.Now.Format("150405")
}

func tokenDatetime(ctx Context, _ string) string {
	return ctx.Now.Format("20060102_150405")
}

func tokenUUID(_ Context, _ string) string {
	return uuid.New().String()
}

func tokenWidth(ctx Context, _ string) string {
	return strconv.Itoa(ctx.Width)
}

func tokenHeight(ctx Context, _ string) string {
	return strconv.Itoa(ctx.Height)
}

func tokenRes(ctx Context, _ string) string {
	return fmt.Sprintf("%dx%d", ctx.Width, ctx.Height)
}

func tokenFilter(ctx Context, _ string) string {
	return ctx.Filter
}

func tokenMode(ctx Context, _ string) string {
	return ctx.Mode
}

func tokenUser(_ Context, _ string) string {
	if u := os.Getenv("USER"); u != "" {
		return u
	}
	if u := os.Getenv("USERNAME"); u != "" {
		return u
	}
	return "unknown"
}
