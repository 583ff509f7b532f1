package objects

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/flomonster/my-git/internal/hash"
)

// Signature is an author or committer identity with a timestamp.
type Signature struct {
	Name  string
	Email string
	When  time.Time
}

// encode renders "<name> <email> <unix-seconds> <±HHMM>".
func (s Signature) encode() string {
	_, offset := s.When.Zone()
	sign := byte('+')
	if offset < 0 {
		sign = '-'
		offset = -offset
	}
	hours := offset / 3600
	minutes := (offset % 3600) / 60
	return fmt.Sprintf("%s <%s> %d %c%02d%02d", s.Name, s.Email, s.When.Unix(), sign, hours, minutes)
}

func parseSignature(line string) (Signature, error) {
	// "<name> <email> <unix> <±HHMM>"
	openAngle := strings.IndexByte(line, '<')
	closeAngle := strings.IndexByte(line, '>')
	if openAngle < 0 || closeAngle < openAngle {
		return Signature{}, fmt.Errorf("%w: malformed signature %q", ErrCorruptObject, line)
	}
	name := strings.TrimSpace(line[:openAngle])
	email := line[openAngle+1 : closeAngle]
	rest := strings.TrimSpace(line[closeAngle+1:])
	fields := strings.Fields(rest)
	if len(fields) != 2 {
		return Signature{}, fmt.Errorf("%w: malformed signature timestamp %q", ErrCorruptObject, line)
	}
	unixSeconds, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil {
		return Signature{}, fmt.Errorf("%w: bad timestamp: %v", ErrCorruptObject, err)
	}
	offsetSeconds, err := parseOffset(fields[1])
	if err != nil {
		return Signature{}, err
	}
	loc := time.FixedZone(fields[1], offsetSeconds)
	return Signature{Name: name, Email: email, When: time.Unix(unixSeconds, 0).In(loc)}, nil
}

func parseOffset(s string) (int, error) {
	if len(s) != 5 || (s[0] != '+' && s[0] != '-') {
		return 0, fmt.Errorf("%w: bad offset %q", ErrCorruptObject, s)
	}
	hours, err := strconv.Atoi(s[1:3])
	if err != nil {
		return 0, fmt.Errorf("%w: bad offset %q", ErrCorruptObject, s)
	}
	minutes, err := strconv.Atoi(s[3:5])
	if err != nil {
		return 0, fmt.Errorf("%w: bad offset %q", ErrCorruptObject, s)
	}
	total := hours*3600 + minutes*60
	if s[0] == '-' {
		total = -total
	}
	return total, nil
}

// Commit ties a tree snapshot to its ancestry and authorship.
type Commit struct {
	TreeHash  hash.Hash
	Parents   []hash.Hash
	Author    Signature
	Committer Signature
	Message   string
}

// Encode renders the canonical payload (without the "commit <len>\0"
// header) matching Git's textual commit format exactly.
func (c *Commit) Encode() []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "tree %s\n", c.TreeHash)
	for _, p := range c.Parents {
		fmt.Fprintf(&buf, "parent %s\n", p)
	}
	fmt.Fprintf(&buf, "author %s\n", c.Author.encode())
	fmt.Fprintf(&buf, "committer %s\n", c.Committer.encode())
	buf.WriteByte('\n')
	buf.WriteString(c.Message)
	return buf.Bytes()
}

// Hash returns the SHA-1 of the commit's canonical encoding.
func (c *Commit) Hash() hash.Hash {
	return hash.Sum(encode(KindCommit, c.Encode()))
}

func decodeCommit(payload []byte) (*Commit, error) {
	c := &Commit{}
	reader := bufio.NewReader(bytes.NewReader(payload))
	for {
		line, err := reader.ReadString('\n')
		trimmed := strings.TrimSuffix(line, "\n")
		if trimmed == "" {
			break
		}
		switch {
		case strings.HasPrefix(trimmed, "tree "):
			h, herr := hash.FromHex(strings.TrimPrefix(trimmed, "tree "))
			if herr != nil {
				return nil, fmt.Errorf("%w: bad tree hash: %v", ErrCorruptObject, herr)
			}
			c.TreeHash = h
		case strings.HasPrefix(trimmed, "parent "):
			h, herr := hash.FromHex(strings.TrimPrefix(trimmed, "parent "))
			if herr != nil {
				return nil, fmt.Errorf("%w: bad parent hash: %v", ErrCorruptObject, herr)
			}
			c.Parents = append(c.Parents, h)
		case strings.HasPrefix(trimmed, "author "):
			sig, serr := parseSignature(strings.TrimPrefix(trimmed, "author "))
			if serr != nil {
				return nil, serr
			}
			c.Author = sig
		case strings.HasPrefix(trimmed, "committer "):
			sig, serr := parseSignature(strings.TrimPrefix(trimmed, "committer "))
			if serr != nil {
				return nil, serr
			}
			c.Committer = sig
		default:
			return nil, fmt.Errorf("%w: unexpected commit header line %q", ErrCorruptObject, trimmed)
		}
		if err != nil {
			break
		}
	}
	rest, _ := io.ReadAll(reader)
	c.Message = string(rest)
	return c, nil
}

// SaveCommit persists c and returns its hash.
func (s *Store) SaveCommit(c *Commit) (hash.Hash, error) {
	return s.save(KindCommit, c.Encode())
}

// LoadCommit reads and decodes the commit at hash h.
func (s *Store) LoadCommit(h hash.Hash) (*Commit, error) {
	payload, err := s.loadRaw(h, KindCommit)
	if err != nil {
		return nil, fmt.Errorf("objects: load commit %s: %w", h, err)
	}
	return decodeCommit(payload)
}
