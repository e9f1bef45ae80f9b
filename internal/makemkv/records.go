package makemkv

import (
	"strconv"
	"strings"
)

// Kind identifies the record type decoded from a robot-mode status line.
type Kind string

const (
	KindCInfo           Kind = "CINFO"
	KindTInfo           Kind = "TINFO"
	KindSInfo           Kind = "SINFO"
	KindTitleCount      Kind = "TCOUNT"
	KindDrive           Kind = "DRV"
	KindProgressValues  Kind = "PRGV"
	KindProgressTitle   Kind = "PRGT"
	KindProgressCurrent Kind = "PRGC"
	KindMessage         Kind = "MSG"
	KindMalformed       Kind = "MALFORMED"
)

// Record is a single decoded status line. Exactly one record is produced per
// non-blank input line; lines that cannot be decoded yield a Malformed record
// rather than an error.
type Record interface {
	Kind() Kind
}

// CInfo is a disc-level attribute.
type CInfo struct {
	ID    int
	Type  int
	Code  int
	Value string
}

// TInfo is a title-level attribute.
type TInfo struct {
	ID    int
	Type  int
	Code  int
	Value string
}

// SInfo is a stream-level attribute.
type SInfo struct {
	ID    int
	Type  int
	Code  int
	Value string
}

// TitleCount announces how many titles the scan found.
type TitleCount struct {
	Count int
}

// Drive is one row of the drive/disc scan table.
type Drive struct {
	Index     int
	Visible   int
	Enabled   int
	Flags     int
	DriveName string
	Device    string
	DiscName  string
}

// ProgressValues carries the current/total progress bar positions and their
// shared maximum scale.
type ProgressValues struct {
	Current int64
	Total   int64
	Max     int64
}

// ProgressTitle names the overall operation in progress.
type ProgressTitle struct {
	Code int
	ID   int
	Name string
}

// ProgressCurrent names the sub-operation in progress.
type ProgressCurrent struct {
	Code int
	ID   int
	Name string
}

// Message is a general tool message.
type Message struct {
	Code    int
	Flags   int
	Count   int
	Message string
	Format  string
	Params  string
}

// Malformed carries a line that had an unknown type tag or too few fields.
// It is diagnostic data, not an error: callers log it and keep going.
type Malformed struct {
	Tag    string
	Fields []string
}

func (CInfo) Kind() Kind           { return KindCInfo }
func (TInfo) Kind() Kind           { return KindTInfo }
func (SInfo) Kind() Kind           { return KindSInfo }
func (TitleCount) Kind() Kind      { return KindTitleCount }
func (Drive) Kind() Kind           { return KindDrive }
func (ProgressValues) Kind() Kind  { return KindProgressValues }
func (ProgressTitle) Kind() Kind   { return KindProgressTitle }
func (ProgressCurrent) Kind() Kind { return KindProgressCurrent }
func (Message) Kind() Kind         { return KindMessage }
func (Malformed) Kind() Kind       { return KindMalformed }

// arity is the required field count per type tag, counting the id field
// carried in the "TYPE:ID" prefix.
var arity = map[string]int{
	"CINFO":  4,
	"TINFO":  4,
	"SINFO":  4,
	"TCOUNT": 1,
	"DRV":    7,
	"PRGV":   3,
	"PRGT":   3,
	"PRGC":   3,
	"MSG":    6,
}

// Parse decodes a block of robot-mode output, producing one record per
// non-blank line in input order. It never fails: undecodable lines become
// Malformed records.
func Parse(text string) []Record {
	lines := strings.Split(text, "\n")
	records := make([]Record, 0, len(lines))
	for _, line := range lines {
		if record, ok := ParseLine(line); ok {
			records = append(records, record)
		}
	}
	return records
}

// ParseLine decodes a single status line. It returns false for blank lines.
func ParseLine(line string) (Record, bool) {
	if strings.TrimSpace(line) == "" {
		return nil, false
	}

	raw := strings.Split(strings.TrimRight(line, "\r"), ",")
	fields := make([]string, len(raw))
	for i, field := range raw {
		fields[i] = stripQuotes(field)
	}

	tag, id, ok := splitTag(fields[0])
	if !ok {
		return Malformed{Tag: fields[0], Fields: fields[1:]}, true
	}
	fields[0] = id

	required, known := arity[tag]
	if !known || len(fields) < required {
		return Malformed{Tag: tag, Fields: fields}, true
	}
	// Extra fields are embedded commas in the final free-text field; fold
	// them back so names and messages survive the split.
	if len(fields) > required {
		fields[required-1] = strings.Join(fields[required-1:], ",")
		fields = fields[:required]
	}

	switch tag {
	case "CINFO":
		return CInfo{ID: toInt(fields[0]), Type: toInt(fields[1]), Code: toInt(fields[2]), Value: fields[3]}, true
	case "TINFO":
		return TInfo{ID: toInt(fields[0]), Type: toInt(fields[1]), Code: toInt(fields[2]), Value: fields[3]}, true
	case "SINFO":
		return SInfo{ID: toInt(fields[0]), Type: toInt(fields[1]), Code: toInt(fields[2]), Value: fields[3]}, true
	case "TCOUNT":
		return TitleCount{Count: toInt(fields[0])}, true
	case "DRV":
		return Drive{
			Index:     toInt(fields[0]),
			Visible:   toInt(fields[1]),
			Enabled:   toInt(fields[2]),
			Flags:     toInt(fields[3]),
			DriveName: fields[4],
			Device:    fields[5],
			DiscName:  fields[6],
		}, true
	case "PRGV":
		return ProgressValues{Current: toInt64(fields[0]), Total: toInt64(fields[1]), Max: toInt64(fields[2])}, true
	case "PRGT":
		return ProgressTitle{Code: toInt(fields[0]), ID: toInt(fields[1]), Name: fields[2]}, true
	case "PRGC":
		return ProgressCurrent{Code: toInt(fields[0]), ID: toInt(fields[1]), Name: fields[2]}, true
	case "MSG":
		return Message{
			Code:    toInt(fields[0]),
			Flags:   toInt(fields[1]),
			Count:   toInt(fields[2]),
			Message: fields[3],
			Format:  fields[4],
			Params:  fields[5],
		}, true
	}
	return Malformed{Tag: tag, Fields: fields}, true
}

// CollectMalformed extracts the Malformed records out of a parsed batch.
func CollectMalformed(records []Record) []Malformed {
	var bad []Malformed
	for _, record := range records {
		if m, ok := record.(Malformed); ok {
			bad = append(bad, m)
		}
	}
	return bad
}

// splitTag separates the leading "TYPE:ID" field.
func splitTag(field string) (tag, id string, ok bool) {
	idx := strings.IndexByte(field, ':')
	if idx <= 0 {
		return "", "", false
	}
	return field[:idx], field[idx+1:], true
}

// stripQuotes removes one layer of surrounding quote or backslash characters
// from a field. Each end is handled independently so that fields produced by
// splitting quoted free text ("one half has only the opening quote") come out
// clean and rejoin losslessly.
func stripQuotes(field string) string {
	if len(field) > 0 && (field[0] == '"' || field[0] == '\\') {
		field = field[1:]
	}
	if len(field) > 0 && (field[len(field)-1] == '"' || field[len(field)-1] == '\\') {
		field = field[:len(field)-1]
	}
	return field
}

func toInt(value string) int {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0
	}
	return n
}

func toInt64(value string) int64 {
	n, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil {
		return 0
	}
	return n
}
