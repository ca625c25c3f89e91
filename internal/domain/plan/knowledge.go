package plan

import "github.com/okian/lingprofile/internal/domain/taxonomy"

// Guidance is the intervention knowledge for one domain.
type Guidance struct {
	Areas      []string `json:"areas"`
	Goals      []string `json:"goals"`
	Strategies []string `json:"strategies"`
	Materials  []string `json:"materials"`
}

var knowledge = map[taxonomy.Domain]Guidance{
	taxonomy.Phonological: {
		Areas: []string{"Auditory discrimination", "Phonological awareness", "Articulation", "Phonological processes"},
		Goals: []string{
			"Develop auditory discrimination of minimal pairs",
			"Improve syllabic and phonemic awareness",
			"Correct simplifying phonological processes",
			"Expand the phonetic inventory",
			"Automate production of target phonemes",
			"Generalize to communicative contexts",
		},
		Strategies: []string{
			"Minimal pair training",
			"Hodson phonological cycles",
			"Maximal complexity approach",
			"Explicit phonological awareness training",
			"Rhyme and alliteration games",
			"Auditory bombardment",
		},
		Materials: []string{"Minimal pair cards", "Phonological awareness games", "Mirror", "Audio recordings"},
	},
	taxonomy.Morphological: {
		Areas: []string{"Nominal inflection", "Verbal inflection", "Derivation", "Grammatical morphemes"},
		Goals: []string{
			"Develop correct use of plural morphemes",
			"Improve verb inflection for tense and person",
			"Expand use of prefixes and suffixes",
			"Increase comprehension of complex words",
			"Develop morphological awareness",
		},
		Strategies: []string{
			"Modeling and expansion",
			"Elicitation in context",
			"Explicit rule training",
			"Morphological transformation games",
			"Word family analysis",
		},
		Materials: []string{"Morphology games", "Structured stories", "Transformation cards"},
	},
	taxonomy.Syntactic: {
		Areas: []string{"Sentence structure", "Complex sentences", "Word order", "Agreement"},
		Goals: []string{
			"Increase mean length of utterance",
			"Develop use of complex sentences",
			"Improve comprehension of syntactic structures",
			"Correct word order errors",
			"Develop use of conjunctions and connectives",
		},
		Strategies: []string{
			"Modeling of expanded sentences",
			"Sentence combining",
			"Sentence reconstruction",
			"Communicative role-play",
			"Listening comprehension training",
		},
		Materials: []string{"Sequential stories", "Sentence building games", "Action pictures"},
	},
	taxonomy.Semantic: {
		Areas: []string{"Receptive vocabulary", "Expressive vocabulary", "Semantic relations", "Categorization"},
		Goals: []string{
			"Expand receptive and expressive vocabulary",
			"Develop semantic networks",
			"Improve lexical access",
			"Develop definitions and descriptions",
			"Understand synonymy and antonymy",
		},
		Strategies: []string{
			"Semantic mapping",
			"Definition training",
			"Categorization and subcategorization",
			"Word association",
			"Lexical retrieval strategies",
		},
		Materials: []string{"Semantic maps", "Vocabulary cards", "Category games"},
	},
	taxonomy.Pragmatic: {
		Areas: []string{"Turn taking", "Relevance", "Narrative", "Social communication"},
		Goals: []string{
			"Develop conversational skills",
			"Improve narrative structure",
			"Develop social inferencing",
			"Improve adequacy to context",
			"Expand communicative functions",
		},
		Strategies: []string{
			"Social role-play",
			"Narrative training with visual supports",
			"Analysis of social situations",
			"Video modeling",
			"Social scripts",
		},
		Materials: []string{"Social stories", "Situation videos", "Emotion cards", "Cooperative games"},
	},
}

// Knowledge returns the guidance for d.
func Knowledge(d taxonomy.Domain) (Guidance, bool) {
	g, ok := knowledge[d]
	return g, ok
}
