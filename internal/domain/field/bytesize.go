package field

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/dustin/go-humanize"
)

// ByteSize is a file size limit that decodes from either a JSON number of
// bytes or a human string such as "5MB" or "512 KiB".
type ByteSize int64

// UnmarshalJSON implements json.Unmarshaler.
func (b *ByteSize) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		n, err := humanize.ParseBytes(s)
		if err != nil {
			return fmt.Errorf("invalid file size %q: %w", s, err)
		}
		*b = ByteSize(n)
		return nil
	}
	var n int64
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid file size: %w", err)
	}
	*b = ByteSize(n)
	return nil
}

// String renders the size in SI units.
func (b ByteSize) String() string {
	return humanize.Bytes(uint64(b))
}
