// Package cypher holds the Cypher statements the OGM layer issues.
//
// Statements take their variable parts as parameters so that stores can
// recognise them by text. Nodes are matched by their "type" property rather
// than by label because the REST get-or-create primitive cannot set labels.
package cypher

import (
	"fmt"
	"regexp"
	"strconv"
)

// Parameter names.
const (
	ParamType     = "type"
	ParamName     = "name"
	ParamLimit    = "limit"
	ParamFromType = "from_type"
	ParamFromUID  = "from_uid"
	ParamToType   = "to_type"
	ParamToUID    = "to_uid"
)

const (
	AllNodes         = "MATCH (n) RETURN n"
	NodesByType      = "MATCH (n) WHERE n.type = $type RETURN n"
	CountAllNodes    = "MATCH (n) RETURN count(n)"
	CountNodesByType = "MATCH (n) WHERE n.type = $type RETURN count(n)"

	AllRelationships         = "MATCH ()-[r]->() RETURN r"
	RelationshipsByName      = "MATCH ()-[r]->() WHERE type(r) = $name RETURN r"
	CountAllRelationships    = "MATCH ()-[r]->() RETURN count(r)"
	CountRelationshipsByName = "MATCH ()-[r]->() WHERE type(r) = $name RETURN count(r)"

	// Purge pages.
	NodePage       = "MATCH (n) RETURN n LIMIT $limit"
	NodePageByType = "MATCH (n) WHERE n.type = $type RETURN n LIMIT $limit"
)

const pathsTemplate = "MATCH p = (a)-[*1..%d]->(b) WHERE a.type = $from_type AND a.uid = $from_uid AND b.type = $to_type AND b.uid = $to_uid RETURN p"

var pathsPattern = regexp.MustCompile(`^MATCH p = \(a\)-\[\*1\.\.(\d+)\]->\(b\) WHERE a\.type = \$from_type AND a\.uid = \$from_uid AND b\.type = \$to_type AND b\.uid = \$to_uid RETURN p$`)

// PathsBetween returns the statement for directed paths of 1..maxDepth hops
// between two nodes identified by type and uid. Variable-length bounds
// cannot be parameters, so the depth is part of the text.
func PathsBetween(maxDepth int) string {
	return fmt.Sprintf(pathsTemplate, maxDepth)
}

// ParsePathsBetween recovers the depth from a PathsBetween statement.
func ParsePathsBetween(statement string) (int, bool) {
	m := pathsPattern.FindStringSubmatch(statement)
	if m == nil {
		return 0, false
	}
	depth, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return depth, true
}
