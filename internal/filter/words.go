package filter

import (
	"fmt"
	"strings"
	"unicode"
)

// DefaultPrior is the prior probability that a post is spam, used when a word
// table does not carry its own.
const DefaultPrior = 0.263

// SpamOddsThreshold scales the spam probability before it is compared with
// the ham probability. A post is spam when spam*SpamOddsThreshold > ham.
const SpamOddsThreshold = 1e45

// WordProbability holds the likelihood of a word appearing in spam and in
// ham posts.
type WordProbability struct {
	Spam float64
	Ham  float64
}

// WordModel is a naive Bayes classifier over a fixed word table. It is
// immutable and safe for concurrent use.
type WordModel struct {
	prior float64
	words map[string]WordProbability
}

// WordVerdict is the outcome of WordModel.Classify.
type WordVerdict struct {
	Spam            bool
	SpamProbability float64
	HamProbability  float64
	// Known lists the body words found in the table, in body order.
	Known []string
}

// NewWordModel builds a model from a spam prior and a word table. Keys are
// lowercased; the table is copied.
func NewWordModel(prior float64, words map[string]WordProbability) (*WordModel, error) {
	if prior <= 0 || prior >= 1 {
		return nil, fmt.Errorf("prior %v must be between 0 and 1", prior)
	}
	table := make(map[string]WordProbability, len(words))
	for w, p := range words {
		if p.Spam < 0 || p.Spam > 1 || p.Ham < 0 || p.Ham > 1 {
			return nil, fmt.Errorf("word %q: probabilities must be between 0 and 1", w)
		}
		table[strings.ToLower(w)] = p
	}
	return &WordModel{prior: prior, words: table}, nil
}

// Prior returns the spam prior.
func (m *WordModel) Prior() float64 { return m.prior }

// Len returns the number of words in the table.
func (m *WordModel) Len() int { return len(m.words) }

// Classify multiplies the probabilities of every known word in the post into
// the prior. A factor that would drive either side to zero is skipped. A post
// without any known word is never spam.
func (m *WordModel) Classify(post Post) WordVerdict {
	v := WordVerdict{SpamProbability: m.prior, HamProbability: 1 - m.prior}
	for _, w := range Words(post.Body) {
		p, ok := m.words[w]
		if !ok {
			continue
		}
		v.Known = append(v.Known, w)

		spam, ham := v.SpamProbability*p.Spam, v.HamProbability*p.Ham
		if spam != 0 && ham != 0 {
			v.SpamProbability, v.HamProbability = spam, ham
		}
	}
	v.Spam = len(v.Known) > 0 && v.SpamProbability*SpamOddsThreshold > v.HamProbability
	return v
}

// Words lowercases body and splits it into runs of letters, digits and marks.
func Words(body string) []string {
	return strings.FieldsFunc(strings.ToLower(body), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r) && !unicode.IsMark(r)
	})
}
