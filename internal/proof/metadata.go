package proof

import (
	"encoding/json"

	dErrors "proofguard/pkg/domain-errors"
	"proofguard/pkg/domain"
)

// SchemaVersion is the current metadata document shape. Version 0 (no
// schema_version key) is the legacy flat map produced by the previous
// system; it is migrated on read and written back as version 1.
const SchemaVersion = 1

// MarshalDocument serializes the metadata document, stamping the current
// schema version.
func (m Metadata) MarshalDocument() ([]byte, error) {
	m.SchemaVersion = SchemaVersion
	b, err := json.Marshal(m)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "marshal metadata document")
	}
	return b, nil
}

// UnmarshalDocument deserializes a metadata document, migrating legacy flat
// maps to the typed shape. An empty document yields empty current-version
// metadata.
func UnmarshalDocument(b []byte) (Metadata, error) {
	if len(b) == 0 {
		return Metadata{SchemaVersion: SchemaVersion}, nil
	}

	var probe struct {
		SchemaVersion int `json:"schema_version"`
	}
	if err := json.Unmarshal(b, &probe); err != nil {
		return Metadata{}, dErrors.Wrap(err, dErrors.CodeInvalidInput, "malformed metadata document")
	}

	if probe.SchemaVersion >= SchemaVersion {
		var m Metadata
		if err := json.Unmarshal(b, &m); err != nil {
			return Metadata{}, dErrors.Wrap(err, dErrors.CodeInvalidInput, "malformed metadata document")
		}
		return m, nil
	}

	return migrateLegacyDocument(b)
}

// legacy keys that map onto typed sub-documents rather than Attributes.
var legacyManagedKeys = map[string]bool{
	"contains_pii":            true,
	"consent":                 true,
	"security_level":          true,
	"security_classification": true,
	"access_restrictions":     true,
	"security_events":         true,
}

// migrateLegacyDocument lifts the old flat associative map into the typed
// document. Keys this core does not manage are preserved under Attributes.
func migrateLegacyDocument(b []byte) (Metadata, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return Metadata{}, dErrors.Wrap(err, dErrors.CodeInvalidInput, "malformed legacy metadata document")
	}

	m := Metadata{SchemaVersion: SchemaVersion}

	if v, ok := raw["contains_pii"]; ok {
		_ = json.Unmarshal(v, &m.ContainsPII)
	}
	if v, ok := raw["consent"]; ok {
		var c ConsentRecord
		if err := json.Unmarshal(v, &c); err == nil {
			m.Consent = &c
		}
	}
	if v, ok := raw["security_classification"]; ok {
		var sc SecurityClassification
		if err := json.Unmarshal(v, &sc); err == nil && sc.Level.IsValid() {
			m.Security = &sc
		}
	}
	if m.Security == nil {
		// The old system also stored a bare level name; honor it when no
		// full classification record exists.
		if v, ok := raw["security_level"]; ok {
			var name string
			if err := json.Unmarshal(v, &name); err == nil {
				if level, err := domain.ParseSecurityLevel(name); err == nil {
					m.Security = &SecurityClassification{Level: level}
				}
			}
		}
	}
	if v, ok := raw["access_restrictions"]; ok {
		var r AccessRestrictions
		if err := json.Unmarshal(v, &r); err == nil {
			m.Restrictions = &r
		}
	}
	if v, ok := raw["security_events"]; ok {
		var events []SecurityEvent
		if err := json.Unmarshal(v, &events); err == nil {
			m.Events = events
		}
	}

	for k, v := range raw {
		if legacyManagedKeys[k] {
			continue
		}
		var val any
		if err := json.Unmarshal(v, &val); err != nil {
			continue
		}
		if m.Attributes == nil {
			m.Attributes = make(map[string]any)
		}
		m.Attributes[k] = val
	}

	return m, nil
}
