package anki

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
)

type mediaEntryJSON struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// encodeMediaIndex maps ticket numbers to file names. Schema 18 packages use an
// array of records, older ones an object keyed by ticket.
func encodeMediaIndex(files []MediaFile, format FormatVersion) ([]byte, error) {
	if format == FormatLatest {
		entries := make([]mediaEntryJSON, 0, len(files))
		for i, f := range files {
			entries = append(entries, mediaEntryJSON{ID: i, Name: f.Name})
		}
		b, err := json.Marshal(entries)
		if err != nil {
			return nil, fmt.Errorf("json.Marshal() > %w", err)
		}
		return b, nil
	}

	index := make(map[string]string, len(files))
	for i, f := range files {
		index[strconv.Itoa(i)] = f.Name
	}
	b, err := json.Marshal(index)
	if err != nil {
		return nil, fmt.Errorf("json.Marshal() > %w", err)
	}
	return b, nil
}

// decodeMediaIndex accepts either index layout and returns entries ordered by ticket.
func decodeMediaIndex(b []byte) ([]mediaEntryJSON, error) {
	if len(bytes.TrimSpace(b)) == 0 {
		return nil, nil
	}

	var entries []mediaEntryJSON
	if err := json.Unmarshal(b, &entries); err == nil {
		sort.Slice(entries, func(i, j int) bool { return entries[i].ID < entries[j].ID })
		return entries, nil
	}

	var index map[string]string
	if err := json.Unmarshal(b, &index); err != nil {
		return nil, fmt.Errorf("json.Unmarshal() > %w", err)
	}
	entries = make([]mediaEntryJSON, 0, len(index))
	for key, name := range index {
		id, err := strconv.Atoi(key)
		if err != nil {
			return nil, fmt.Errorf("media ticket %q: %w", key, err)
		}
		entries = append(entries, mediaEntryJSON{ID: id, Name: name})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].ID < entries[j].ID })
	return entries, nil
}
