package types

// Backend converts a State to bytes and back. Implementations must
// round-trip every normalized State losslessly.
type Backend interface {
	Serialize(State) ([]byte, error)
	Deserialize([]byte) (State, error)
}

// Format names a Backend.
type Format string

// Supported formats.
const (
	FormatMessagePack Format = "msgpack"
	FormatCBOR        Format = "cbor"
)

// DefaultFormat is used when no format is configured.
const DefaultFormat = FormatMessagePack

// knownFormats lists the formats that Config.Validate accepts.
var knownFormats = map[Format]bool{
	FormatMessagePack: true,
	FormatCBOR:        true,
}
