package decoy

import (
	"encoding/json"
	"fmt"
	"math"
	"math/rand/v2"
	"strings"
	"time"

	coredecoy "3tcapital/biohoneypot/internal/core/decoy"
)

// Bounds and vocabularies of the fabricated payloads.
const (
	MinSequenceLength = 100
	MaxSequenceLength = 1000
	UploadIDLength    = 8
	TokenLength       = 32
	MinExperiments    = 5
	MaxExperiments    = 15
	DataPointCount    = 50
	MinTemperature    = 20.0
	MaxTemperature    = 37.0

	// TimestampLayout mimics a naive ISO-8601 timestamp with microseconds.
	TimestampLayout = "2006-01-02T15:04:05.000000"

	nucleotides    = "ATCG"
	uploadAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	tokenAlphabet  = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	guestUser      = "guest"
)

var (
	organisms          = []string{"E. coli", "S. cerevisiae", "H. sapiens", "M. musculus"}
	equipmentStatuses  = []string{"online", "offline", "maintenance", "busy"}
	experimentSubjects = []string{"protein", "gene", "enzyme"}
	researchers        = []string{"Smith", "Johnson", "Brown", "Wilson"}
	experimentStatuses = []string{"active", "completed", "pending"}
	loginPermissions   = []string{"read", "write", "admin"}
)

// Source is the randomness a generator draws from. *rand.Rand satisfies it.
type Source interface {
	// IntN returns a value in [0, n).
	IntN(n int) int
	// Float64 returns a value in [0.0, 1.0).
	Float64() float64
}

// NewSource returns an independently seeded generator for a single request.
func NewSource() Source {
	return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
}

// Sequence fabricates a nucleotide record for id.
func Sequence(src Source, id string) coredecoy.Sequence {
	seq := randomString(src, nucleotides, between(src, MinSequenceLength, MaxSequenceLength))
	return coredecoy.Sequence{
		ID:       id,
		Sequence: seq,
		Organism: pick(src, organisms),
		Length:   len(seq),
		Type:     "DNA",
	}
}

// Upload acknowledges any upload with a fresh identifier.
func Upload(src Source) coredecoy.UploadResult {
	return coredecoy.UploadResult{
		Status:  "success",
		ID:      randomString(src, uploadAlphabet, UploadIDLength),
		Message: "Sequence uploaded successfully",
	}
}

// EquipmentStatus reports a plausible state for equipmentID.
func EquipmentStatus(src Source, equipmentID string, now time.Time) coredecoy.EquipmentStatus {
	temp := MinTemperature + src.Float64()*(MaxTemperature-MinTemperature)
	return coredecoy.EquipmentStatus{
		EquipmentID: equipmentID,
		Status:      pick(src, equipmentStatuses),
		Temperature: math.Round(temp*10) / 10,
		LastUsed:    now.Format(TimestampLayout),
	}
}

// ControlEquipment acknowledges command as executed. command is echoed as
// received; nil or invalid JSON is echoed as null.
func ControlEquipment(equipmentID string, command []byte) coredecoy.ControlResult {
	var echoed json.RawMessage
	if len(command) > 0 && json.Valid(command) {
		echoed = json.RawMessage(command)
	}
	return coredecoy.ControlResult{
		EquipmentID: equipmentID,
		Command:     echoed,
		Status:      "executed",
		Result:      "Command processed successfully",
	}
}

// Experiments fabricates the experiment listing.
func Experiments(src Source, now time.Time) []coredecoy.Experiment {
	n := between(src, MinExperiments, MaxExperiments)
	created := now.Format(TimestampLayout)

	out := make([]coredecoy.Experiment, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, coredecoy.Experiment{
			ID:         fmt.Sprintf("EXP_%03d", i),
			Title:      fmt.Sprintf("Study of %s expression", pick(src, experimentSubjects)),
			Researcher: "Dr. " + pick(src, researchers),
			Status:     pick(src, experimentStatuses),
			Created:    created,
		})
	}
	return out
}

// ExperimentData fabricates measurements for experimentID.
func ExperimentData(src Source, experimentID string) coredecoy.ExperimentData {
	points := make([]float64, DataPointCount)
	for i := range points {
		points[i] = src.Float64() * 100
	}
	return coredecoy.ExperimentData{
		ExperimentID: experimentID,
		DataPoints:   points,
		Metadata: coredecoy.ExperimentMetadata{
			Samples:       between(src, 10, 100),
			DurationHours: between(src, 1, 72),
		},
	}
}

// Login grants a session to anyone. An empty username becomes "guest".
func Login(src Source, username string) coredecoy.LoginResult {
	if username == "" {
		username = guestUser
	}
	perms := make([]string, len(loginPermissions))
	copy(perms, loginPermissions)
	return coredecoy.LoginResult{
		Status:      "success",
		Token:       randomString(src, tokenAlphabet, TokenLength),
		User:        username,
		Permissions: perms,
	}
}

// between returns a value in [lo, hi].
func between(src Source, lo, hi int) int {
	return lo + src.IntN(hi-lo+1)
}

func pick(src Source, options []string) string {
	return options[src.IntN(len(options))]
}

func randomString(src Source, alphabet string, n int) string {
	var b strings.Builder
	b.Grow(n)
	for i := 0; i < n; i++ {
		b.WriteByte(alphabet[src.IntN(len(alphabet))])
	}
	return b.String()
}
