package anime

import "strings"

// Rarity grades of a recruited character.
const (
	RarityCommon    = "Common"
	RarityRare      = "Rare"
	RarityLegendary = "Legendary"
)

// rarityBonus feeds the squad strength formula.
var rarityBonus = map[string]int{
	RarityCommon:    1,
	RarityRare:      3,
	RarityLegendary: 7,
}

// verses maps each verse to its recruitable characters.
var verses = map[string][]string{
	"Naruto": {
		"Naruto Uzumaki", "Sasuke Uchiha", "Sakura Haruno", "Kakashi Hatake", "Itachi Uchiha",
		"Gaara", "Shikamaru Nara", "Hinata Hyuga", "Rock Lee", "Tsunade",
	},
	"DBZ": {
		"Goku", "Vegeta", "Gohan", "Frieza", "Piccolo", "Trunks", "Cell", "Majin Buu", "Krillin", "Tien",
	},
	"One Piece": {
		"Luffy", "Zoro", "Nami", "Sanji", "Usopp", "Chopper", "Robin", "Franky", "Brook", "Jinbe",
	},
	"Bleach": {
		"Ichigo Kurosaki", "Rukia Kuchiki", "Renji Abarai", "Orihime Inoue", "Uryu Ishida",
		"Yasutora Sado", "Kenpachi Zaraki", "Byakuya Kuchiki", "Toshiro Hitsugaya", "Grimmjow",
	},
	"Seven Deadly Sins": {
		"Meliodas", "Elizabeth", "Diane", "Ban", "King", "Gowther", "Merlin", "Escanor",
		"Hawk", "Arthur",
	},
	"Black Clover": {
		"Asta", "Yuno", "Noelle Silva", "Yami Sukehiro", "Finral", "Luck Voltia", "Magna Swing",
		"Gauche", "Charmy", "Secre",
	},
}

// verseOrder fixes the display order of the catalog.
var verseOrder = []string{"Naruto", "DBZ", "One Piece", "Bleach", "Seven Deadly Sins", "Black Clover"}

// Verses lists all verse names in display order.
func Verses() []string {
	out := make([]string, len(verseOrder))
	copy(out, verseOrder)
	return out
}

// Roster returns the characters of one verse and whether it exists.
// Lookup ignores case so "/search naruto" works.
func Roster(verse string) (name string, roster []string, ok bool) {
	for _, v := range verseOrder {
		if strings.EqualFold(v, strings.TrimSpace(verse)) {
			return v, verses[v], true
		}
	}
	return "", nil, false
}
