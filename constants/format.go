package constants

// Bottle formats in centilitres as written to the sheet.
const (
	FormatStandard = "75"
	FormatMagnum   = "150"
	FormatJeroboam = "300"
)
