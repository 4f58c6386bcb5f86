package intent

import "dv-relay/internal/patterns"

var (
	shelterCategory = patterns.NewCategory("shelter", 1.0,
		`\bshelters?\b`,
		`\bsafe\s+(place|house|home)\b`,
		`\b(place|somewhere)\s+to\s+(stay|sleep|go)\b`,
		`\b(emergency|transitional)\s+housing\b`,
		`\b(leave|get out of|escape)\s+(my|the)\s+(home|house|apartment)\b`,
	)

	resourceCategory = patterns.NewCategory("resource", 0.6,
		`\bresources?\b`,
		`\bservices?\b`,
		`\bprograms?\b`,
		`\bcenters?\b`,
	)

	locationCategory = patterns.NewCategory("location", 0.5,
		`\b(near|nearby|around|close to)\b`,
		`\bin\s+[a-z]+`,
		`\bwhere\s+(can|do|is|are)\b`,
		`\b(find|looking for|need)\s+(a|an|some)?\s*(shelter|place|bed)`,
	)

	legalCategory = patterns.NewCategory("legal", 1.0,
		`\b(lawyer|attorney|legal\s+aid|legal\s+help)\b`,
		`\b(restraining|protective|protection)\s+orders?\b`,
		`\b(custody|divorce|court|judge)\b`,
		`\bmy\s+rights\b`,
	)

	informationCategory = patterns.NewCategory("information", 0.8,
		`\bwhat\s+(is|are|does)\b`,
		`\b(signs|warning\s+signs|types)\s+of\b`,
		`\b(tell|explain)\s+(me\s+)?(about|what)\b`,
		`\bhow\s+(do|can)\s+i\b`,
		`\bsafety\s+plan`,
	)

	contactCategory = patterns.NewCategory("contact", 0.5,
		`\b(hotline|helpline|phone\s+number|call)\b`,
		`\b(talk|speak)\s+to\s+(someone|somebody|an?\s+\w+)\b`,
	)

	generalCategory = patterns.NewCategory("general", 0.4,
		`\b(domestic\s+violence|abuse|abusive|abuser)\b`,
		`\b(help|support|counseling|advocate)\b`,
		`\b(hurt|hit|threaten(ed|s)?|scared|afraid|unsafe)\b`,
	)

	offTopicCategory = patterns.NewCategory("off_topic", 1.0,
		`\b(joke|riddle|weather|forecast)\b`,
		`\b(sports?|football|basketball|baseball)\b`,
		`\b(recipe|cook|movie|song|music)\b`,
	)
)
