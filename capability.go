package cloak

// Built-in strategy names.
// Use these constants in struct tags: `mask:"PHONE"`
const (
	// StrategyPhone keeps the 3-digit prefix and 4-digit suffix of a mobile number.
	StrategyPhone = "PHONE"

	// StrategyEmail keeps two characters of the local part and the domain.
	StrategyEmail = "EMAIL"

	// StrategyIDCard keeps the region prefix and last three characters of a
	// 15 or 18 character identity card number.
	StrategyIDCard = "ID_CARD"

	// StrategyIDCar is the legacy name for StrategyIDCard.
	StrategyIDCar = "ID_CAR"

	// StrategyAddress keeps the first three runes and the tail after the eleventh.
	StrategyAddress = "ADDRESS"

	// StrategyName keeps the first rune of a personal name.
	StrategyName = "NAME"

	// StrategyBank keeps the first six and last four digits of an account number.
	StrategyBank = "BANK"

	// StrategyAmount formats a monetary amount and masks its digits.
	StrategyAmount = "AMOUNT"

	// StrategySSN keeps the last four digits of a Social Security Number.
	StrategySSN = "SSN"

	// StrategyCard keeps the last four digits of a payment card number.
	StrategyCard = "CARD"

	// StrategyIP keeps the network part of an IPv4 or IPv6 address.
	StrategyIP = "IP"

	// StrategyUUID keeps the first segment of a UUID.
	StrategyUUID = "UUID"

	// StrategyIBAN keeps the country code, check digits and last four characters.
	StrategyIBAN = "IBAN"

	// StrategyRedact replaces the whole value with a fixed replacement.
	StrategyRedact = "REDACT"

	// StrategyFingerprint replaces the value with a short one-way token.
	// Use for correlation across log lines, NOT for secrecy of low-entropy data.
	StrategyFingerprint = "FINGERPRINT"
)

// builtinNames contains every built-in strategy name, aliases included.
var builtinNames = map[string]bool{
	StrategyPhone:       true,
	StrategyEmail:       true,
	StrategyIDCard:      true,
	StrategyIDCar:       true,
	StrategyAddress:     true,
	StrategyName:        true,
	StrategyBank:        true,
	StrategyAmount:      true,
	StrategySSN:         true,
	StrategyCard:        true,
	StrategyIP:          true,
	StrategyUUID:        true,
	StrategyIBAN:        true,
	StrategyRedact:      true,
	StrategyFingerprint: true,
}

// IsBuiltin reports whether name is a built-in strategy name.
func IsBuiltin(name string) bool {
	return builtinNames[name]
}

// Builtins returns a fresh instance of every built-in strategy.
// Aliases are not included; NewBuiltinRegistry installs them.
func Builtins() []Strategy {
	return []Strategy{
		PhoneStrategy(),
		EmailStrategy(),
		IDCardStrategy(),
		AddressStrategy(),
		NameStrategy(),
		BankStrategy(),
		AmountStrategy(),
		SSNStrategy(),
		CardStrategy(),
		IPStrategy(),
		UUIDStrategy(),
		IBANStrategy(),
		RedactStrategy(),
		FingerprintStrategy(),
	}
}
