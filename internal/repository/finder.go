package repository

import "fmt"

// Finder は定義済みの検索条件を表す。
type Finder string

const (
	FinderBornBefore2000       Finder = "born-before-2000"
	FinderHasSiblings          Finder = "has-siblings"
	FinderNotificationsEnabled Finder = "notifications-enabled"
	FinderMultiAvailability    Finder = "multi-availability"
)

var finderClauses = map[Finder]string{
	FinderBornBefore2000:       `birthdate < '2000-01-01'`,
	FinderHasSiblings:          `array_length(siblings, 1) > 0`,
	FinderNotificationsEnabled: `site_setting ->> 'notifications' = 'true'`,
	FinderMultiAvailability:    `cardinality(availability) > 1`,
}

// Finders は利用可能なFinderを返す。
func Finders() []Finder {
	return []Finder{
		FinderBornBefore2000,
		FinderHasSiblings,
		FinderNotificationsEnabled,
		FinderMultiAvailability,
	}
}

// ParseFinder は名前からFinderを解決する。
func ParseFinder(name string) (Finder, error) {
	f := Finder(name)
	if _, ok := finderClauses[f]; !ok {
		return "", fmt.Errorf("unknown finder %q (available: %v)", name, Finders())
	}
	return f, nil
}

func (f Finder) clause() (string, error) {
	c, ok := finderClauses[f]
	if !ok {
		return "", fmt.Errorf("unknown finder %q", string(f))
	}
	return c, nil
}
