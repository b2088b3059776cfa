package domain

import "fmt"

const DefaultModel = "qwen/qwen2.5-vl-32b-instruct:free"

// Locale holds the user-facing texts injected into the conversation.
type Locale struct {
	ContextHeader   string
	NoResults       string
	LinkUnavailable string
	SystemPrompt    string
}

var LocaleEN = Locale{
	ContextHeader:   "[WEB] Recent search results:\n",
	NoResults:       "No relevant web results in the past week.",
	LinkUnavailable: "(link unavailable)",
	SystemPrompt: "You are an AI assistant. Your answer **must rely exclusively** on the " +
		"information provided in the preceding [WEB] blocks. If the information is insufficient " +
		"to answer correctly, say: 'Insufficient information in the provided web sources.' " +
		"Cite your sources by giving the site or the title in parentheses.",
}

var LocaleFR = Locale{
	ContextHeader:   "[WEB] Résultats de recherche récents:\n",
	NoResults:       "Aucun résultat web pertinent dans la dernière semaine.",
	LinkUnavailable: "(lien indisponible)",
	SystemPrompt: "Vous êtes un assistant IA francophone. Votre réponse **doit se baser exclusivement** sur les " +
		"informations fournies dans les blocs [WEB] qui précèdent. Si les informations sont insuffisantes " +
		"pour répondre correctement, dites : ‘Information insuffisante dans les sources web fournies.’ " +
		"Citez vos sources en précisant le site ou le titre entre parenthèses.",
}

func LocaleByName(name string) (Locale, error) {
	switch name {
	case "en":
		return LocaleEN, nil
	case "fr":
		return LocaleFR, nil
	}
	return Locale{}, fmt.Errorf("unsupported locale %q", name)
}
