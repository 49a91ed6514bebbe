package route

import "strings"

// MatchFilter reports whether topic falls under filter, applying MQTT's
// '+'/'#' wildcard rules and the '$'-prefix exclusion (a filter containing
// a wildcard never matches a topic starting with '$', even '#' alone).
func MatchFilter(filter, topic string) bool {
	if strings.HasPrefix(topic, "$") && (strings.Contains(filter, "#") || strings.Contains(filter, "+")) {
		return false
	}
	if filter == topic {
		return true
	}
	return matchLevels(splitTopicLevels(filter), splitTopicLevels(topic))
}

func matchLevels(filterLevels, topicLevels []string) bool {
	fi, ti := 0, 0
	for fi < len(filterLevels) && ti < len(topicLevels) {
		fl := filterLevels[fi]
		if fl == "#" {
			return true
		}
		if fl == "+" {
			fi++
			ti++
			continue
		}
		if fl != topicLevels[ti] {
			return false
		}
		fi++
		ti++
	}
	if fi < len(filterLevels) {
		return len(filterLevels)-fi == 1 && filterLevels[fi] == "#"
	}
	return ti == len(topicLevels)
}
