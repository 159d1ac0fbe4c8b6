package normalize

import (
	"strings"
)

// nicknameGroups lists given names that commonly refer to the same person.
var nicknameGroups = [][]string{
	{"michael", "mike", "mikey", "mick", "mickey"},
	{"robert", "rob", "robbie", "bob", "bobby", "bert"},
	{"william", "will", "willy", "bill", "billy", "liam"},
	{"richard", "rich", "richie", "rick", "ricky", "dick"},
	{"james", "jim", "jimmy", "jamie"},
	{"john", "johnny", "jack"},
	{"jonathan", "jon", "jonny"},
	{"elizabeth", "liz", "lizzie", "beth", "betty", "eliza"},
	{"katherine", "catherine", "kate", "katie", "kathy", "cathy", "kat"},
	{"jennifer", "jen", "jenny"},
	{"christopher", "chris", "topher"},
	{"christine", "christina", "chris", "tina"},
	{"matthew", "matt", "matty"},
	{"daniel", "dan", "danny"},
	{"thomas", "tom", "tommy"},
	{"joseph", "joe", "joey"},
	{"anthony", "tony"},
	{"margaret", "maggie", "meg", "peggy"},
	{"stephen", "steven", "steve"},
	{"edward", "ed", "eddie", "ted", "ned"},
	{"alexander", "alex", "xander"},
	{"alexandra", "alex", "lexi", "sandra"},
	{"samuel", "sam", "sammy"},
	{"samantha", "sam", "sammy"},
	{"benjamin", "ben", "benny"},
	{"nicholas", "nick", "nicky"},
	{"patricia", "pat", "patty", "trish"},
	{"patrick", "pat", "paddy"},
	{"susan", "sue", "suzy"},
	{"rebecca", "becky", "becca"},
	{"andrew", "andy", "drew"},
	{"timothy", "tim", "timmy"},
	{"gregory", "greg"},
	{"kenneth", "ken", "kenny"},
	{"charles", "charlie", "chuck"},
	{"david", "dave", "davey"},
	{"deborah", "debbie", "deb"},
	{"victoria", "vicky", "tori"},
	{"jeffrey", "jeff"},
	{"joshua", "josh"},
	{"zachary", "zach", "zack"},
	{"nathaniel", "nathan", "nate"},
	{"abigail", "abby"},
	{"frederick", "fred", "freddie"},
	{"lawrence", "larry"},
	{"raymond", "ray"},
	{"ronald", "ron", "ronnie"},
	{"donald", "don", "donnie"},
	{"gerald", "gerry", "jerry"},
}

var nicknameIndex = buildNicknameIndex()

func buildNicknameIndex() map[string][]string {
	idx := make(map[string][]string)
	for _, group := range nicknameGroups {
		for _, name := range group {
			idx[name] = appendUnique(idx[name], group...)
		}
	}
	return idx
}

// NameVariants returns the lowercase name followed by every known nickname
// or formal variant of it. Unknown names yield just themselves.
func NameVariants(first string) []string {
	name := strings.ToLower(foldDiacritics(strings.TrimSpace(first)))
	if name == "" {
		return nil
	}
	return appendUnique([]string{name}, nicknameIndex[name]...)
}

// FirstNamePrefix returns the lowercase n-character prefix of a first name.
// Names no longer than n are returned whole.
func FirstNamePrefix(first string, n int) string {
	if n <= 0 {
		n = 3
	}
	return prefix(strings.ToLower(foldDiacritics(strings.TrimSpace(first))), n)
}

func prefix(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func appendUnique(dst []string, values ...string) []string {
	for _, v := range values {
		dup := false
		for _, d := range dst {
			if d == v {
				dup = true
				break
			}
		}
		if !dup {
			dst = append(dst, v)
		}
	}
	return dst
}
