package naming

import (
	"path/filepath"
	"strconv"
	"strings"

	"github.com/moistari/rls"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// NameYear is a guessed movie title and release year.
type NameYear struct {
	Name string
	Year int
}

// Valid reports whether both name and year are present.
func (n NameYear) Valid() bool {
	return n.Name != "" && n.Year > 0
}

// Query formats the pair as a search query.
func (n NameYear) Query() string {
	return n.Name + " " + strconv.Itoa(n.Year)
}

// ReleaseGuess is the preferred guess plus the alternative it beat.
type ReleaseGuess struct {
	NameYear
	Other NameYear
}

// TitleGuesser guesses a title and year from a file name.
type TitleGuesser interface {
	GuessTitleYear(filename string) (NameYear, bool)
}

// RLSGuesser guesses titles with the rls release parser.
type RLSGuesser struct{}

func (RLSGuesser) GuessTitleYear(filename string) (NameYear, bool) {
	base := filepath.Base(filename)
	r := rls.ParseString(base)
	if r.Title == "" || r.Year == 0 {
		return NameYear{}, false
	}
	return NameYear{Name: r.Title, Year: r.Year}, true
}

func titleCase(s string) string {
	return cases.Title(language.English).String(s)
}

// ReleaseNameYear guesses the movie behind a release name. The guesser runs
// on fileName when given; a cleaned split-on-year reading of releaseName is
// the fallback and wins when it agrees on the year but carries a longer name.
func ReleaseNameYear(g TitleGuesser, releaseName, fileName string) ReleaseGuess {
	releaseName = strings.Trim(releaseName, " .-_")

	var guess NameYear
	if fileName != "" && g != nil {
		if ny, ok := g.GuessTitleYear(fileName); ok {
			guess = ny
		}
	}

	releaseName = filepath.Base(strings.ReplaceAll(releaseName, `\`, "/"))
	cleaned := replaceNoise(Simplify(releaseName), " ")

	var year string
	for _, s := range []string{fileName, releaseName, cleaned} {
		if s == "" {
			continue
		}
		if year = FindYear(s); year != "" {
			break
		}
	}

	var fallback NameYear
	if year != "" {
		if i := strings.LastIndex(cleaned, year); i >= 0 {
			if name := strings.TrimSpace(cleaned[:i]); name != "" {
				fallback = NameYear{Name: titleCase(name), Year: atoi(year)}
			}
		}
		if fallback.Name == "" {
			name, _, _ := strings.Cut(cleaned, "  ")
			name = strings.TrimSpace(name)
			if name != "" {
				ny := NameYear{Name: titleCase(name)}
				if !strings.HasPrefix(name, year) {
					ny.Year = atoi(year)
				}
				fallback = ny
			}
		}
	}

	switch {
	case fallback.Year == guess.Year && len(fallback.Name) > len(guess.Name):
		return ReleaseGuess{NameYear: fallback, Other: guess}
	case guess.Name == "" && guess.Year == 0:
		return ReleaseGuess{NameYear: fallback, Other: guess}
	default:
		return ReleaseGuess{NameYear: guess, Other: fallback}
	}
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
