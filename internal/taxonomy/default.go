package taxonomy

// Default returns the built-in taxonomy used when no taxonomy file is
// configured. Keyword sets cover common Saudi merchants in both Latin and
// Arabic spellings; rule order encodes priority.
func Default() *Taxonomy {
	t, err := New(defaultCategories, defaultRules)
	if err != nil {
		// The built-in tables are validated by tests; this is unreachable for
		// a correct build.
		panic(err)
	}
	return t
}

var defaultCategories = []string{
	"Groceries",
	"Food & Dining",
	"Coffee",
	"Transportation",
	"Fuel",
	"Shopping",
	"Utilities",
	"Telecom",
	"Health",
	"Entertainment",
	"Travel",
	"Transfers",
	"Cash",
	"Fees & Charges",
	"Other",
}

var defaultRules = []Rule{
	{Category: "Groceries", Keywords: []string{
		"TAMIMI", "PANDA", "DANUBE", "CARREFOUR", "LULU", "OTHAIM", "NESTO",
		"SUPERMARKET", "HYPERMARKET", "GROCERY", "BAQALA", "تموينات",
	}},
	{Category: "Coffee", Keywords: []string{
		"STARBUCKS", "BARNS", "DUNKIN", "COSTA", "CAFFE", "CAFE", "COFFEE", "قهوة",
	}},
	{Category: "Food & Dining", Keywords: []string{
		"KEETA", "HUNGERSTATION", "JAHEZ", "TOYOU", "MRSOOL", "RESTAURANT",
		"MCDONALD", "ALBAIK", "KUDU", "HERFY", "SHAWARMA", "PIZZA", "BURGER",
		"KFC", "SUBWAY", "مطعم",
	}},
	{Category: "Fuel", Keywords: []string{
		"SASCO", "ALDREES", "PETROMIN", "NAFT", "FUEL", "PETROL", "محطة",
	}},
	{Category: "Transportation", Keywords: []string{
		"UBER", "CAREEM", "BOLT", "TAXI", "PARKING", "METRO", "RIYADH BUS",
	}},
	{Category: "Telecom", Keywords: []string{
		"STC", "MOBILY", "ZAIN", "SALAM", "VIRGIN MOBILE", "LEBARA",
	}},
	{Category: "Utilities", Keywords: []string{
		"ELECTRICITY", "SEC", "WATER", "MARAFIQ", "SAWACO", "كهرباء", "مياه",
	}},
	{Category: "Health", Keywords: []string{
		"PHARMACY", "NAHDI", "DAWAA", "HOSPITAL", "CLINIC", "POLYCLINIC",
		"صيدلية", "مستشفى",
	}},
	{Category: "Shopping", Keywords: []string{
		"AMAZON", "NOON", "JARIR", "IKEA", "EXTRA", "SACO", "SHEIN", "NAMSHI",
		"CENTREPOINT", "ZARA", "H&M", "MALL",
	}},
	{Category: "Entertainment", Keywords: []string{
		"NETFLIX", "SPOTIFY", "SHAHID", "OSN", "CINEMA", "MUVI", "VOX",
		"PLAYSTATION", "STEAM",
	}},
	{Category: "Travel", Keywords: []string{
		"SAUDIA", "FLYNAS", "FLYADEAL", "AIRBNB", "BOOKING", "HOTEL", "AIRLINE",
	}},
	{Category: "Cash", Keywords: []string{
		"ATM WITHDRAWAL", "CASH WITHDRAWAL", "سحب نقدي",
	}},
	{Category: "Transfers", Keywords: []string{
		"TRANSFER", "حوالة",
	}},
	{Category: "Fees & Charges", Keywords: []string{
		"FEE", "CHARGE", "COMMISSION", "VAT ON FEE", "رسوم",
	}},
}
