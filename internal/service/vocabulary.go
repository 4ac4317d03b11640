package service

import "strings"

// Normalization tables for the diversity scorer. Matching is
// substring-based over English and Turkish terms, kept as data so new
// locales extend the tables without touching scoring logic.

type bucket struct {
	canonical string
	synonyms  []string
}

// Bucket order matters: the first match wins, so more specific terms
// (stir-fry) come before broader ones (frying).
var proteinBuckets = []bucket{
	{"chicken", []string{"chicken", "tavuk", "pilic", "piliç", "poultry", "turkey", "hindi"}},
	{"fish", []string{"fish", "salmon", "tuna", "shrimp", "seafood", "balık", "balik", "somon", "levrek", "hamsi", "karides"}},
	{"beef", []string{"beef", "steak", "dana", "sığır", "sigir", "kıyma", "kiyma", "veal"}},
	{"pork", []string{"pork", "bacon", "ham", "sausage", "domuz"}},
	{"lamb", []string{"lamb", "mutton", "kuzu", "koyun"}},
	{"vegetarian", []string{"vegetarian", "vegan", "tofu", "lentil", "chickpea", "bean", "mercimek", "nohut", "fasulye", "sebze"}},
}

var methodBuckets = []bucket{
	{"stir-fry", []string{"stir-fry", "stir fry", "saute", "sauté", "sote", "wok"}},
	{"grilling", []string{"grill", "barbecue", "bbq", "ızgara", "izgara", "mangal"}},
	{"baking", []string{"bake", "baking", "baked", "roast", "oven", "fırın", "firin"}},
	{"boiling", []string{"boil", "simmer", "stew", "poach", "haşlama", "haslama", "güveç", "guvec"}},
	{"steaming", []string{"steam", "buhar", "buğulama", "bugulama"}},
	{"frying", []string{"fry", "frying", "fried", "kızartma", "kizartma", "kavurma"}},
}

// pantryStoplist filters ingredients too common to carry any novelty
// signal. English and Turkish pantry staples.
var pantryStoplist = map[string]bool{
	"salt": true, "pepper": true, "water": true, "oil": true, "oliveoil": true,
	"sugar": true, "flour": true, "butter": true,
	"tuz": true, "karabiber": true, "biber": true, "su": true,
	"yag": true, "yağ": true, "zeytinyagi": true, "zeytinyağı": true,
	"seker": true, "şeker": true, "un": true, "tereyagi": true, "tereyağı": true,
}

// Reference vocabularies the analytics aggregator compares user
// distributions against when looking for underrepresented categories.
var (
	referenceCuisines = []string{
		"italian", "french", "chinese", "japanese", "thai", "indian",
		"mexican", "mediterranean", "turkish", "american", "korean",
		"spanish", "greek", "middle eastern", "vietnamese",
	}
	referenceProteins = []string{
		"chicken", "beef", "fish", "pork", "lamb", "vegetarian",
		"shrimp", "tofu", "turkey", "egg",
	}
	referenceMethods = []string{
		"baking", "grilling", "stir-fry", "boiling", "steaming",
		"frying", "roasting", "braising", "slow-cooking", "raw",
	}
)

// bucketize maps a raw label to its canonical bucket by substring match,
// falling back to the lowercased label itself when no bucket matches.
func bucketize(raw string, buckets []bucket) string {
	lowered := strings.ToLower(strings.TrimSpace(raw))
	if lowered == "" {
		return ""
	}
	for _, b := range buckets {
		for _, syn := range b.synonyms {
			if strings.Contains(lowered, syn) {
				return b.canonical
			}
		}
	}
	return lowered
}

func normalizeProtein(raw string) string {
	return bucketize(raw, proteinBuckets)
}

func normalizeMethod(raw string) string {
	return bucketize(raw, methodBuckets)
}

func normalizeCuisine(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// normalizeIngredient lowercases and strips everything outside the
// English and Turkish letter alphabets, so "2 cups Flour," and "flour"
// collide.
func normalizeIngredient(raw string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(raw) {
		if (r >= 'a' && r <= 'z') || strings.ContainsRune("çğıöşü", r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ingredientSet normalizes a list of ingredient names into a set, dropping
// pantry staples and empty results.
func ingredientSet(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, item := range items {
		norm := normalizeIngredient(item)
		if norm == "" || pantryStoplist[norm] {
			continue
		}
		set[norm] = true
	}
	return set
}
