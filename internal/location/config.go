package location

// Config holds the word lists the resolver works from. They are data, not logic:
// deployments may extend them without touching the extraction order.
type Config struct {
	// Fillers are conversational openers stripped from the start of an utterance.
	Fillers []string
	// CurrentLocationPhrases mean "wherever I am right now".
	CurrentLocationPhrases []string
	// StopWords dominate rejected candidates.
	StopWords []string
	// Cities is the static gazetteer used when no explicit phrase is found.
	Cities []string
}

// DefaultConfig returns the built-in lists.
func DefaultConfig() Config {
	return Config{
		Fillers: []string{
			"can you please help me find", "can you help me find", "could you help me find",
			"i'm looking for", "i am looking for", "i'm trying to find", "i am trying to find",
			"can you help me", "could you help me", "can you please", "could you please",
			"help me find", "i need to find", "i want to find", "i would like",
			"i need", "i want", "find me", "looking for", "can you", "could you",
			"please", "hello", "hi there", "hey there", "hi", "hey", "um", "uh", "so", "well", "okay", "ok",
		},
		CurrentLocationPhrases: []string{
			"near me", "nearby", "close to me", "around me", "my location", "my current location",
			"current location", "my area", "where i am", "around here", "near here", "in my city",
		},
		StopWords: []string{
			"a", "an", "the", "some", "any", "me", "my", "i", "you", "we", "it", "this", "that",
			"to", "for", "of", "on", "with", "and", "or", "is", "are", "be", "can", "could",
			"help", "need", "find", "finding", "looking", "want", "get", "go", "stay", "safe",
			"shelter", "shelters", "place", "places", "home", "homes", "house", "women", "woman",
			"kids", "children", "family", "tonight", "today", "now", "night", "area", "town",
			"city", "please", "there", "here", "somewhere", "someone", "abuse", "violence",
			"domestic", "emergency", "immediately", "urgent", "information", "info",
			"danger", "trouble", "risk", "legal", "lawyer", "advice", "relationship", "relationships",
			"marriage", "general", "person", "case", "court", "custody", "order", "orders",
		},
		Cities: []string{
			"new york city", "new york", "los angeles", "san francisco", "san diego", "san jose",
			"san antonio", "salt lake city", "las vegas", "kansas city", "oklahoma city",
			"fort worth", "el paso", "long beach", "virginia beach", "st. louis", "st louis",
			"new orleans", "chicago", "houston", "phoenix", "philadelphia", "dallas", "austin",
			"jacksonville", "columbus", "charlotte", "indianapolis", "seattle", "denver",
			"washington", "boston", "nashville", "detroit", "portland", "memphis", "louisville",
			"baltimore", "milwaukee", "albuquerque", "tucson", "fresno", "sacramento", "atlanta",
			"miami", "oakland", "minneapolis", "tulsa", "cleveland", "tampa", "pittsburgh",
			"cincinnati", "orlando", "honolulu", "anchorage", "raleigh", "omaha", "boise",
			"toronto", "vancouver", "montreal", "london", "sydney", "melbourne",
		},
	}
}
