package similarity

// BKTree is a BK-tree for similarity search using edit distance.
// Keys are normalized phrases; each key remembers the display forms that
// normalized to it, so a search can report what the learner was shown.
type BKTree struct {
	root *bkNode
	size int
}

type bkNode struct {
	key      string
	phrases  []string
	children map[int]*bkNode
}

// NewBKTree creates a new empty BK-tree.
func NewBKTree() *BKTree {
	return &BKTree{}
}

// Insert adds key to the tree. phrase is recorded against the key even when
// the key already exists.
func (t *BKTree) Insert(key, phrase string) {
	if key == "" {
		return
	}

	if t.root == nil {
		t.root = newNode(key, phrase)
		t.size++
		return
	}

	current := t.root
	for {
		dist := LevenshteinDistance(key, current.key)
		if dist == 0 {
			current.addPhrase(phrase)
			return
		}

		child, exists := current.children[dist]
		if !exists {
			current.children[dist] = newNode(key, phrase)
			t.size++
			return
		}
		current = child
	}
}

func newNode(key, phrase string) *bkNode {
	n := &bkNode{key: key, children: make(map[int]*bkNode)}
	n.addPhrase(phrase)
	return n
}

func (n *bkNode) addPhrase(phrase string) {
	if phrase == "" {
		return
	}
	for _, p := range n.phrases {
		if p == phrase {
			return
		}
	}
	n.phrases = append(n.phrases, phrase)
}

// SearchResult holds a search result with its distance.
type SearchResult struct {
	Key      string   `json:"key"`
	Phrases  []string `json:"phrases"`
	Distance int      `json:"distance"`
	Ratio    float64  `json:"ratio"`
}

// Search finds all keys within maxDistance edit distance from the query.
func (t *BKTree) Search(query string, maxDistance int) []SearchResult {
	if t.root == nil || query == "" {
		return nil
	}

	var results []SearchResult
	t.searchNode(t.root, query, maxDistance, &results)
	return results
}

func (t *BKTree) searchNode(node *bkNode, query string, maxDistance int, results *[]SearchResult) {
	dist := LevenshteinDistance(query, node.key)

	if dist <= maxDistance {
		*results = append(*results, SearchResult{
			Key:      node.key,
			Phrases:  append([]string(nil), node.phrases...),
			Distance: dist,
			Ratio:    Ratio(query, node.key),
		})
	}

	// Only search children within the possible distance range
	minDist := dist - maxDistance
	maxDist := dist + maxDistance

	for childDist, child := range node.children {
		if childDist >= minDist && childDist <= maxDist {
			t.searchNode(child, query, maxDistance, results)
		}
	}
}

// Size returns the number of distinct keys in the tree.
func (t *BKTree) Size() int {
	return t.size
}

// Contains checks if a key exists in the tree.
func (t *BKTree) Contains(key string) bool {
	results := t.Search(key, 0)
	return len(results) > 0 && results[0].Distance == 0
}
