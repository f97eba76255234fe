package categories

// defaultEntries is the built-in category table used when no categories file
// is configured. Upstream ids cover the categories with a stable numeric
// mapping; the rest are resolved through their search term only.
var defaultEntries = []Entry{
	{Key: "verzorging", UpstreamID: "12442", FallbackTerm: "scheerapparaat", DisplayName: "Persoonlijke verzorging"},
	{Key: "koptelefoons", UpstreamID: "10689", FallbackTerm: "koptelefoon", DisplayName: "Koptelefoons"},
	{Key: "smartwatches", UpstreamID: "21503", FallbackTerm: "smartwatch", DisplayName: "Smartwatches"},
	{Key: "speakers", UpstreamID: "10690", FallbackTerm: "bluetooth speaker", DisplayName: "Speakers"},
	{Key: "stofzuigers", UpstreamID: "13512", FallbackTerm: "stofzuiger", DisplayName: "Stofzuigers"},
	{Key: "koffiemachines", UpstreamID: "13210", FallbackTerm: "koffiemachine", DisplayName: "Koffiemachines"},
	{Key: "airfryers", FallbackTerm: "airfryer", DisplayName: "Airfryers"},
	{Key: "blenders", FallbackTerm: "blender", DisplayName: "Blenders"},
	{Key: "haardrogers", FallbackTerm: "haardroger", DisplayName: "Haardrogers"},
	{Key: "powerbanks", UpstreamID: "10712", FallbackTerm: "powerbank", DisplayName: "Powerbanks"},
	{Key: "monitoren", UpstreamID: "10704", FallbackTerm: "monitor", DisplayName: "Monitoren"},
	{Key: "toetsenborden", FallbackTerm: "toetsenbord", DisplayName: "Toetsenborden"},
	{Key: "fitness-trackers", FallbackTerm: "fitness tracker", DisplayName: "Fitness trackers"},
	{Key: "babyfoons", UpstreamID: "11318", FallbackTerm: "babyfoon", DisplayName: "Babyfoons"},
	{Key: "kinderwagens", UpstreamID: "11312", FallbackTerm: "kinderwagen", DisplayName: "Kinderwagens"},
}

// Default returns the built-in registry.
func Default() *Registry {
	reg, err := NewRegistry(defaultEntries)
	if err != nil {
		// The built-in table is validated by tests; this cannot fail at runtime.
		panic(err)
	}
	return reg
}
