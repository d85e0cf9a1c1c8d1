package config

// ConfigFileName is the default resolver configuration file name.
const ConfigFileName = "tower.yaml"

// ScenarioFileExtensions are all recognized scenario file extensions
var ScenarioFileExtensions = []string{".yaml", ".yml"}

// Operator convention names
const (
	InvokeName   = "invoke"
	ContainsName = "contains"
	GetName      = "get"
	SetName      = "set"
)

// Extension names that are looked up before members.
const (
	ForEachName       = "forEach"
	AddSuppressedName = "addSuppressed"
)

// Logging defaults
const (
	DefaultLogLevel  = "info"
	TextLogFormat    = "text"
	JSONLogFormat    = "json"
	DefaultLogFormat = TextLogFormat
)

// DefaultHidesMembers is the hides-members name list used when no configuration overrides it.
var DefaultHidesMembers = []string{ForEachName, AddSuppressedName}

// Built-in type names
const (
	AnyTypeName     = "Any"
	NothingTypeName = "Nothing"
	UnitTypeName    = "Unit"
	IntTypeName     = "Int"
	LongTypeName    = "Long"
	ShortTypeName   = "Short"
	ByteTypeName    = "Byte"
	DoubleTypeName  = "Double"
	StringTypeName  = "String"
	BooleanTypeName = "Boolean"
)

// IntegerLiteralTargets are the types an integer literal may default to.
var IntegerLiteralTargets = []string{IntTypeName, LongTypeName, ShortTypeName, ByteTypeName}
