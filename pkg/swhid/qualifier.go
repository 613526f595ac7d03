package swhid

import (
	"net/url"
	"strconv"
	"strings"
)

// Qualifier keys, in canonical rendering order.
const (
	QualifierOrigin = "origin"
	QualifierVisit  = "visit"
	QualifierAnchor = "anchor"
	QualifierPath   = "path"
	QualifierLines  = "lines"
)

var qualifierOrder = []string{
	QualifierOrigin,
	QualifierVisit,
	QualifierAnchor,
	QualifierPath,
	QualifierLines,
}

// LineRange is the value of the lines qualifier. End is zero for a single
// line.
type LineRange struct {
	Start int
	End   int
}

func (r LineRange) String() string {
	if r.End == 0 {
		return strconv.Itoa(r.Start)
	}
	return strconv.Itoa(r.Start) + "-" + strconv.Itoa(r.End)
}

// QualifiedIdentifier is a core identifier plus optional context
// qualifiers. Unset qualifiers are zero values.
type QualifiedIdentifier struct {
	Core   Identifier
	Origin string
	Visit  *Identifier
	Anchor *Identifier
	Path   string
	Lines  *LineRange
}

// ParseQualified parses "core[;key=value]*".
func ParseQualified(s string) (QualifiedIdentifier, error) {
	fields := strings.Split(s, ";")
	core, err := Parse(fields[0])
	if err != nil {
		return QualifiedIdentifier{}, err
	}
	q := QualifiedIdentifier{Core: core}

	seen := make(map[string]bool, len(fields)-1)
	for _, field := range fields[1:] {
		key, val, ok := strings.Cut(field, "=")
		if !ok || key == "" {
			return QualifiedIdentifier{}, Errorf(KindInvalidQualifier, "%q: want key=value", field)
		}
		if seen[key] {
			return QualifiedIdentifier{}, Errorf(KindInvalidQualifier, "%q appears more than once", key)
		}
		seen[key] = true
		if val == "" {
			return QualifiedIdentifier{}, Errorf(KindInvalidQualifierValue, "%s: empty value", key)
		}
		if err := q.set(key, val); err != nil {
			return QualifiedIdentifier{}, err
		}
	}
	return q, nil
}

func (q *QualifiedIdentifier) set(key, val string) error {
	switch key {
	case QualifierOrigin:
		origin, err := url.PathUnescape(val)
		if err != nil {
			return Wrap(KindInvalidQualifierValue, "origin", err)
		}
		q.Origin = origin
	case QualifierVisit:
		id, err := Parse(val)
		if err != nil {
			return Wrap(KindInvalidQualifierValue, "visit", err)
		}
		if id.Kind() != Snapshot {
			return Errorf(KindInvalidQualifierValue, "visit: %s is not a snapshot", id)
		}
		q.Visit = &id
	case QualifierAnchor:
		id, err := Parse(val)
		if err != nil {
			return Wrap(KindInvalidQualifierValue, "anchor", err)
		}
		if id.Kind() == Content {
			return Errorf(KindInvalidQualifierValue, "anchor: %s cannot be a content", id)
		}
		q.Anchor = &id
	case QualifierPath:
		p, err := url.PathUnescape(val)
		if err != nil {
			return Wrap(KindInvalidQualifierValue, "path", err)
		}
		q.Path = p
	case QualifierLines:
		r, err := parseLines(val)
		if err != nil {
			return err
		}
		q.Lines = &r
	default:
		return Errorf(KindUnknownQualifier, "%q", key)
	}
	return nil
}

func parseLines(val string) (LineRange, error) {
	startStr, endStr, ranged := strings.Cut(val, "-")
	start, err := parseLineNumber(startStr)
	if err != nil {
		return LineRange{}, Errorf(KindInvalidQualifierValue, "lines: %q", val)
	}
	r := LineRange{Start: start}
	if ranged {
		end, err := parseLineNumber(endStr)
		if err != nil || end < start {
			return LineRange{}, Errorf(KindInvalidQualifierValue, "lines: %q", val)
		}
		r.End = end
	}
	return r, nil
}

func parseLineNumber(s string) (int, error) {
	if s == "" || strings.TrimLeft(s, "0123456789") != "" {
		return 0, strconv.ErrSyntax
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if n < 1 {
		return 0, strconv.ErrRange
	}
	return n, nil
}

// String renders the identifier with its qualifiers in canonical order.
func (q QualifiedIdentifier) String() string {
	var b strings.Builder
	b.WriteString(q.Core.String())
	for _, key := range qualifierOrder {
		val, ok := q.value(key)
		if !ok {
			continue
		}
		b.WriteByte(';')
		b.WriteString(key)
		b.WriteByte('=')
		b.WriteString(val)
	}
	return b.String()
}

func (q QualifiedIdentifier) value(key string) (string, bool) {
	switch key {
	case QualifierOrigin:
		return escapeQualifier(q.Origin), q.Origin != ""
	case QualifierVisit:
		if q.Visit == nil {
			return "", false
		}
		return q.Visit.String(), true
	case QualifierAnchor:
		if q.Anchor == nil {
			return "", false
		}
		return q.Anchor.String(), true
	case QualifierPath:
		return escapeQualifier(q.Path), q.Path != ""
	case QualifierLines:
		if q.Lines == nil {
			return "", false
		}
		return q.Lines.String(), true
	}
	return "", false
}

var qualifierEscaper = strings.NewReplacer("%", "%25", ";", "%3B")

func escapeQualifier(s string) string {
	return qualifierEscaper.Replace(s)
}
