package textutil

// Built-in stop-lists. The French list is deliberately wider: the pipeline's
// primary corpus is French and articles/contractions dominate page text.

var stopwordsEN = map[string]bool{
	"a": true, "about": true, "above": true, "after": true, "again": true,
	"all": true, "also": true, "an": true, "and": true, "any": true,
	"are": true, "as": true, "at": true, "be": true, "because": true,
	"been": true, "before": true, "being": true, "below": true, "between": true,
	"both": true, "but": true, "by": true, "can": true, "could": true,
	"did": true, "do": true, "does": true, "doing": true, "down": true,
	"during": true, "each": true, "few": true, "for": true, "from": true,
	"further": true, "had": true, "has": true, "have": true, "having": true,
	"he": true, "her": true, "here": true, "hers": true, "him": true,
	"his": true, "how": true, "i": true, "if": true, "in": true,
	"into": true, "is": true, "it": true, "its": true, "just": true,
	"me": true, "more": true, "most": true, "my": true, "no": true,
	"nor": true, "not": true, "now": true, "of": true, "off": true,
	"on": true, "once": true, "only": true, "or": true, "other": true,
	"our": true, "out": true, "over": true, "own": true, "same": true,
	"she": true, "should": true, "so": true, "some": true, "such": true,
	"than": true, "that": true, "the": true, "their": true, "them": true,
	"then": true, "there": true, "these": true, "they": true, "this": true,
	"those": true, "through": true, "to": true, "too": true, "under": true,
	"until": true, "up": true, "very": true, "was": true, "we": true,
	"were": true, "what": true, "when": true, "where": true, "which": true,
	"while": true, "who": true, "whom": true, "why": true, "will": true,
	"with": true, "would": true, "you": true, "your": true, "yours": true,
}

var stopwordsFR = map[string]bool{
	"a": true, "ai": true, "ainsi": true, "alors": true, "apres": true,
	"après": true, "au": true, "aucun": true, "aussi": true, "autre": true,
	"autres": true, "aux": true, "avant": true, "avec": true, "avoir": true,
	"bon": true, "car": true, "ce": true, "cela": true, "ces": true,
	"cet": true, "cette": true, "ceux": true, "chaque": true, "chez": true,
	"comme": true, "comment": true, "dans": true, "de": true, "des": true,
	"deux": true, "dois": true, "donc": true, "dont": true, "du": true,
	"elle": true, "elles": true, "en": true, "encore": true, "entre": true,
	"est": true, "et": true, "etaient": true, "etais": true, "etait": true,
	"etant": true, "etc": true, "ete": true, "etre": true, "eu": true,
	"fait": true, "faites": true, "fois": true, "font": true, "hors": true,
	"ici": true, "il": true, "ils": true, "je": true, "juste": true,
	"la": true, "le": true, "les": true, "leur": true, "leurs": true,
	"lui": true, "ma": true, "mais": true, "me": true, "meme": true,
	"même": true, "mes": true, "mine": true, "moi": true, "moins": true,
	"mon": true, "mot": true, "ne": true, "ni": true, "nommes": true,
	"nos": true, "notre": true, "nous": true, "ou": true, "où": true,
	"par": true, "parce": true, "pas": true, "peu": true, "peut": true,
	"plupart": true, "plus": true, "pour": true, "pourquoi": true,
	"quand": true, "que": true, "quel": true, "quelle": true, "quelles": true,
	"quels": true, "qui": true, "sa": true, "sans": true, "se": true,
	"selon": true, "ses": true, "seulement": true, "si": true, "sien": true,
	"son": true, "sont": true, "sous": true, "soyez": true, "sur": true,
	"ta": true, "tandis": true, "tellement": true, "tels": true, "tes": true,
	"toi": true, "ton": true, "tous": true, "tout": true, "toute": true,
	"toutes": true, "tres": true, "très": true, "tu": true, "un": true,
	"une": true, "voient": true, "vont": true, "vos": true, "votre": true,
	"vous": true, "vu": true, "ça": true, "étaient": true, "état": true,
	"étions": true, "été": true, "être": true, "dès": true, "là": true,
	"cependant": true, "toutefois": true, "néanmoins": true, "lors": true,
}

// IsStopword reports whether a lowercased token is in the stop-list for the
// given language. Unknown languages use the English list.
func IsStopword(token, lang string) bool {
	switch lang {
	case "fr":
		return stopwordsFR[token] || stopwordsEN[token]
	default:
		return stopwordsEN[token]
	}
}
