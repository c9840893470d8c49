package feedback

import (
	"strings"

	"interview-practice/internal/config"
)

// MatchRole возвращает первый набор советов, ключевое слово которого встречается в роли
func MatchRole(sets []config.RoleTips, role string) (config.RoleTips, bool) {
	lower := strings.ToLower(role)
	for _, set := range sets {
		for _, kw := range set.Keywords {
			if kw != "" && strings.Contains(lower, strings.ToLower(kw)) {
				return set, true
			}
		}
	}
	return config.RoleTips{}, false
}
