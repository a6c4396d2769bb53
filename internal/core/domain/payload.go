package domain

import "time"

// PayloadSchemaVersion is the current chunk payload schema version.
// Records written by older builds used ad-hoc key names (file_name, url,
// page_content); those are upgraded by an explicit migration pass, never by
// runtime field probing.
const PayloadSchemaVersion = 1

// Canonical payload keys stored with every vector point.
const (
	PayloadKeySchemaVersion = "schema_version"
	PayloadKeyText          = "text"
	PayloadKeySourceType    = "source_type"
	PayloadKeySourceName    = "source_name"
	PayloadKeyIngestedAt    = "ingested_at"
)

// Legacy payload keys that earlier record shapes used for the source name.
// Only the migration pass may read these.
var LegacySourceNameKeys = []string{"file_name", "url", "source"}

// LegacyTextKeys are earlier record shapes' keys for the chunk text.
var LegacyTextKeys = []string{"page_content", "content"}

// ChunkPayload is the versioned payload stored alongside each vector.
type ChunkPayload struct {
	SchemaVersion int
	Text          string
	SourceType    SourceType
	SourceName    string
	IngestedAt    time.Time
}

// NewChunkPayload builds the current-version payload for a chunk.
func NewChunkPayload(c Chunk) ChunkPayload {
	return ChunkPayload{
		SchemaVersion: PayloadSchemaVersion,
		Text:          c.Text,
		SourceType:    c.SourceType,
		SourceName:    c.SourceName,
		IngestedAt:    c.IngestedAt,
	}
}

// IsLegacy reports whether the payload predates the versioned schema.
func (p ChunkPayload) IsLegacy() bool {
	return p.SchemaVersion < PayloadSchemaVersion
}

// Chunk converts a payload read back from the store into a Chunk.
// The point ID is supplied by the store adapter.
func (p ChunkPayload) Chunk(id string) Chunk {
	return Chunk{
		ID:         id,
		Text:       p.Text,
		SourceType: p.SourceType,
		SourceName: p.SourceName,
		IngestedAt: p.IngestedAt,
	}
}

// UpgradeLegacyPayload maps an old-shaped payload (flat key/value map) onto
// the versioned schema. Returns false when no source name can be recovered;
// such records are left untouched by the migration pass.
func UpgradeLegacyPayload(fields map[string]any) (ChunkPayload, bool) {
	p := ChunkPayload{SchemaVersion: PayloadSchemaVersion}

	if name, ok := firstString(fields, PayloadKeySourceName); ok {
		p.SourceName = name
	} else if name, ok := firstString(fields, LegacySourceNameKeys...); ok {
		p.SourceName = name
	} else {
		return ChunkPayload{}, false
	}

	if text, ok := firstString(fields, PayloadKeyText); ok {
		p.Text = text
	} else if text, ok := firstString(fields, LegacyTextKeys...); ok {
		p.Text = text
	}

	if st, ok := firstString(fields, PayloadKeySourceType); ok && SourceType(st).IsValid() {
		p.SourceType = SourceType(st)
	} else if len(p.SourceName) > 4 && (p.SourceName[:4] == "http") {
		p.SourceType = SourceURL
	} else {
		p.SourceType = SourcePDF
	}

	if ts, ok := firstString(fields, PayloadKeyIngestedAt, "timestamp"); ok {
		if t, err := time.Parse(time.RFC3339, ts); err == nil {
			p.IngestedAt = t
		}
	}

	return p, true
}

// firstString returns the first of the given keys that holds a non-empty
// string value.
func firstString(fields map[string]any, keys ...string) (string, bool) {
	for _, key := range keys {
		if v, ok := fields[key]; ok {
			if s, ok := v.(string); ok && s != "" {
				return s, true
			}
		}
	}
	return "", false
}
