package gateway

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// defaultIdentitySentinel is the username some brokers (notably Redis ACLs)
// report as their implicit default identity. Sending it back as an explicit
// credential breaks password-only authentication, so it is normalised to
// "no username" during parsing.
const defaultIdentitySentinel = "default"

// Descriptor is the parsed, credential-aware form of a dependency
// connection string.
//
// A Descriptor is produced once at startup by Parse or FromParts and is
// immutable afterwards. Absence of connection settings yields a nil
// Descriptor, not an error.
type Descriptor struct {
	// Scheme is the URL scheme ("redis", "nats", "tcp", "ssl", ...).
	// Empty for descriptors built from discrete fields.
	Scheme string

	// Host and Port locate the dependency.
	Host string
	Port int

	// Username and Password are optional credentials. Username is never the
	// broker default-identity sentinel; that value is normalised to empty.
	Username string
	Password string

	// raw holds the verbatim connection string for opaque passthrough when
	// structured parsing failed.
	raw string
}

// Parse turns a connection string into a Descriptor.
//
// Parse never fails. The three outcomes are:
//   - empty input: nil (dependency unconfigured)
//   - "scheme://[user[:pass]@]host[:port][/...]": structured descriptor
//   - anything else: opaque descriptor passing the raw string through
//     verbatim to the client library (Opaque reports true)
//
// defaultPort fills in the port when the URL omits one.
func Parse(raw string, defaultPort int) *Descriptor {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return &Descriptor{raw: raw}
	}

	port := defaultPort
	if p := u.Port(); p != "" {
		if n, convErr := strconv.Atoi(p); convErr == nil {
			port = n
		}
	}

	var username, password string
	if u.User != nil {
		username = normalizeUsername(u.User.Username())
		password, _ = u.User.Password()
	}

	return &Descriptor{
		Scheme:   u.Scheme,
		Host:     u.Hostname(),
		Port:     port,
		Username: username,
		Password: password,
	}
}

// FromParts builds a Descriptor from discrete host/port/credential fields.
// An empty host yields nil (dependency unconfigured).
func FromParts(host string, port int, username, password string) *Descriptor {
	if strings.TrimSpace(host) == "" {
		return nil
	}
	return &Descriptor{
		Host:     host,
		Port:     port,
		Username: normalizeUsername(username),
		Password: password,
	}
}

// normalizeUsername treats the broker default-identity sentinel and the
// empty string as "no username".
func normalizeUsername(username string) string {
	if username == defaultIdentitySentinel {
		return ""
	}
	return username
}

// Opaque reports whether structured parsing failed and the raw connection
// string should be handed to the client library verbatim.
func (d *Descriptor) Opaque() bool {
	return d.raw != ""
}

// Target returns the string to hand to the client library: host:port for
// structured descriptors, the verbatim input for opaque ones.
func (d *Descriptor) Target() string {
	if d.Opaque() {
		return d.raw
	}
	return fmt.Sprintf("%s:%d", d.Host, d.Port)
}

// URL renders the descriptor as scheme://[user[:pass]@]host:port for client
// libraries that take a URL rather than an address. Opaque descriptors are
// returned verbatim.
func (d *Descriptor) URL(defaultScheme string) string {
	if d.Opaque() {
		return d.raw
	}
	scheme := d.Scheme
	if scheme == "" {
		scheme = defaultScheme
	}
	u := url.URL{
		Scheme: scheme,
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
	}
	switch {
	case d.Username != "" && d.Password != "":
		u.User = url.UserPassword(d.Username, d.Password)
	case d.Username != "":
		u.User = url.User(d.Username)
	case d.Password != "":
		u.User = url.UserPassword("", d.Password)
	}
	return u.String()
}

// Redacted returns a log-safe rendering of the descriptor with all
// credentials stripped. This is the only form that may appear in log lines.
func (d *Descriptor) Redacted() string {
	if d.Opaque() {
		return redactRaw(d.raw)
	}
	if d.Scheme != "" {
		return fmt.Sprintf("%s://%s:%d", d.Scheme, d.Host, d.Port)
	}
	return fmt.Sprintf("%s:%d", d.Host, d.Port)
}

// redactRaw strips any userinfo section from an unparseable connection
// string. Everything between "://" (or the start) and the last "@" before
// the first path separator is dropped.
func redactRaw(raw string) string {
	rest := raw
	prefix := ""
	if i := strings.Index(raw, "://"); i >= 0 {
		prefix = raw[:i+3]
		rest = raw[i+3:]
	}
	authority := rest
	if j := strings.IndexAny(rest, "/?"); j >= 0 {
		authority = rest[:j]
	}
	if k := strings.LastIndex(authority, "@"); k >= 0 {
		return prefix + rest[k+1:]
	}
	return raw
}
