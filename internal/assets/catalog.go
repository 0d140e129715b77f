package assets

// Catalog is the manifest resolved once into typed role slots.
// It is immutable after Resolve and safe to share.
type Catalog struct {
	urls [roleCount]string
}

// Resolve maps every Role through its name, then its alias chain, then its
// fallback URL. Unknown manifest roles are ignored.
func Resolve(m *Manifest) *Catalog {
	byName := make(map[string]string, len(m.Sprites))
	for _, s := range m.Sprites {
		if s.URL != "" {
			byName[s.Role] = s.URL
		}
	}
	c := &Catalog{}
	for _, r := range Roles() {
		spec := roleSpecs[r]
		url, ok := byName[spec.name]
		for _, alias := range spec.aliases {
			if ok {
				break
			}
			url, ok = byName[alias]
		}
		if !ok {
			url = spec.fallback
		}
		c.urls[r] = url
	}
	return c
}

// URL returns the resolved URL for r, "" when the role has nothing to show.
func (c *Catalog) URL(r Role) string {
	if r < 0 || r >= roleCount {
		return ""
	}
	return c.urls[r]
}

// DanceFrames returns the non-empty dance animation frames in order.
func (c *Catalog) DanceFrames() []string {
	return c.nonEmpty(RoleDanceClean01, RoleDanceClean02, RoleDanceClean03)
}

// HitFrames returns the hit reaction frames in order.
func (c *Catalog) HitFrames() []string {
	return c.nonEmpty(RoleHitReact01, RoleHitReact02, RoleHitReact03)
}

func (c *Catalog) nonEmpty(roles ...Role) []string {
	out := make([]string, 0, len(roles))
	for _, r := range roles {
		if u := c.URL(r); u != "" {
			out = append(out, u)
		}
	}
	return out
}

// Map returns role name → URL for every role with a URL.
func (c *Catalog) Map() map[string]string {
	out := make(map[string]string, roleCount)
	for _, r := range Roles() {
		if u := c.URL(r); u != "" {
			out[r.String()] = u
		}
	}
	return out
}
