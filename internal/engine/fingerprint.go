package engine

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"math"

	"github.com/google/uuid"
	"github.com/rxtech-lab/argo-ta/internal/config"
	"github.com/rxtech-lab/argo-ta/internal/types"
)

// fingerprintNamespace scopes fingerprints so they never collide with other
// name-based UUIDs.
var fingerprintNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/rxtech-lab/argo-ta/fingerprint"))

// Fingerprint identifies a (series, parameters) pair. Two requests with the
// same bars and the same indicator parameters share a fingerprint.
func Fingerprint(series types.Series, cfg config.IndicatorsConfig) (string, error) {
	var buf bytes.Buffer

	buf.WriteString(series.Symbol())
	buf.WriteByte(0)

	for _, bar := range series.Bars() {
		fields := []uint64{
			uint64(bar.Time.UnixNano()),
			math.Float64bits(bar.Open),
			math.Float64bits(bar.High),
			math.Float64bits(bar.Low),
			math.Float64bits(bar.Close),
			math.Float64bits(bar.Volume),
		}

		for _, f := range fields {
			if err := binary.Write(&buf, binary.LittleEndian, f); err != nil {
				return "", err
			}
		}
	}

	params, err := json.Marshal(cfg)
	if err != nil {
		return "", err
	}

	buf.Write(params)

	return uuid.NewSHA1(fingerprintNamespace, buf.Bytes()).String(), nil
}
