package shell

import (
	"io/fs"
	"net/url"
	"regexp"
	"strings"
	"sync"
)

// UnknownLogo is served when no file exists for a team
const UnknownLogo = "unknown.svg"

// LogoRoute is the absolute path logos are served under
const LogoRoute = "/logos/"

var logoExtensions = []string{".png", ".svg", ".PNG", ".SVG"}

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// TeamSlug turns a team name into the file stem used for its logo
func TeamSlug(team string) string {
	s := nonSlug.ReplaceAllString(strings.ToLower(strings.TrimSpace(team)), "-")
	return strings.Trim(s, "-")
}

// LogoResolver finds a team's logo file, trying each extension in turn and caching
// the result per slug. It is safe for concurrent use.
type LogoResolver struct {
	fsys fs.FS

	mu    sync.RWMutex
	cache map[string]string
}

// NewLogoResolver creates a resolver over fsys
func NewLogoResolver(fsys fs.FS) *LogoResolver {
	return &LogoResolver{fsys: fsys, cache: map[string]string{}}
}

// Resolve returns the file name of the logo for slug
func (r *LogoResolver) Resolve(slug string) string {
	r.mu.RLock()
	name, ok := r.cache[slug]
	r.mu.RUnlock()
	if ok {
		return name
	}

	name = r.lookup(slug)

	r.mu.Lock()
	r.cache[slug] = name
	r.mu.Unlock()
	return name
}

// ResolveTeam resolves the logo of a team by name
func (r *LogoResolver) ResolveTeam(team string) string {
	return r.Resolve(TeamSlug(team))
}

// TeamURL returns the absolute URL path of a team's logo. Views are rendered
// under nested routes, so a bare file name would resolve against the page path.
func (r *LogoResolver) TeamURL(team string) string {
	return LogoRoute + url.PathEscape(r.ResolveTeam(team))
}

func (r *LogoResolver) lookup(slug string) string {
	if slug == "" || r.fsys == nil {
		return UnknownLogo
	}
	for _, ext := range logoExtensions {
		name := slug + ext
		if info, err := fs.Stat(r.fsys, name); err == nil && !info.IsDir() {
			return name
		}
	}
	return UnknownLogo
}

// Cached reports how many slugs have been resolved
func (r *LogoResolver) Cached() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.cache)
}

// Open opens a logo file by name
func (r *LogoResolver) Open(name string) (fs.File, error) {
	if r.fsys == nil {
		return nil, fs.ErrNotExist
	}
	return r.fsys.Open(name)
}
