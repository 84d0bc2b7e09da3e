// Package randomchat implements the Markov-chain chat generator module.
// This file holds the dictionary: a two-word-lookback chain keyed on
// (word, word) pairs, with a fixed 5-byte word record format.
package randomchat

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"math/rand/v2"
	"strings"
)

type wordKind byte

const (
	wordIndex  wordKind = 0
	wordStart1 wordKind = 1
	wordStart2 wordKind = 2
	wordEnd    wordKind = 0xFF
)

// word is a tagged union: Start1, Start2, Word(index), or End. index is
// only meaningful when kind is wordIndex.
type word struct {
	kind  wordKind
	index uint32
}

var (
	start1 = word{kind: wordStart1}
	start2 = word{kind: wordStart2}
	end    = word{kind: wordEnd}
)

func wordOf(index uint32) word { return word{kind: wordIndex, index: index} }

// toBytes serializes w to the fixed 5-byte record: one tag byte followed
// by a little-endian uint32 payload (zero when unused).
func (w word) toBytes() [5]byte {
	var b [5]byte
	b[0] = byte(w.kind)
	binary.LittleEndian.PutUint32(b[1:], w.index)
	return b
}

func wordFromBytes(b []byte) (word, bool) {
	if len(b) < 5 {
		return word{}, false
	}
	switch wordKind(b[0]) {
	case wordIndex:
		return wordOf(binary.LittleEndian.Uint32(b[1:5])), true
	case wordStart1:
		return start1, true
	case wordStart2:
		return start2, true
	case wordEnd:
		return end, true
	default:
		return word{}, false
	}
}

// entry is the two-word lookback key the chain is built on.
type entry [2]word

// Dictionary is a learned vocabulary plus the Markov chain built from it.
// HandleEvent is only ever called from the runtime's single dispatch
// goroutine, so Dictionary needs no internal locking.
type Dictionary struct {
	words  []string
	index  map[string]uint32 // lowercased word -> index into words
	chains map[entry]map[word]uint32
}

// NewDictionary returns an empty dictionary.
func NewDictionary() *Dictionary {
	return &Dictionary{
		index:  make(map[string]uint32),
		chains: make(map[entry]map[word]uint32),
	}
}

func (d *Dictionary) insertWord(w string) uint32 {
	lower := strings.ToLower(w)
	if idx, ok := d.index[lower]; ok {
		return idx
	}
	idx := uint32(len(d.words))
	d.words = append(d.words, w)
	d.index[lower] = idx
	return idx
}

// LearnFromLine tokenizes line on whitespace and folds every observed
// (word, word) -> word transition into the chain, bracketed by Start1,
// Start2 and End markers.
func (d *Dictionary) LearnFromLine(line string) {
	tokens := strings.Fields(line)
	if len(tokens) == 0 {
		return
	}

	seq := make([]word, 0, len(tokens)+3)
	seq = append(seq, start1, start2)
	for _, t := range tokens {
		seq = append(seq, wordOf(d.insertWord(t)))
	}
	seq = append(seq, end)

	for i := 0; i+2 < len(seq); i++ {
		e := entry{seq[i], seq[i+1]}
		next := seq[i+2]
		results, ok := d.chains[e]
		if !ok {
			results = make(map[word]uint32)
			d.chains[e] = results
		}
		results[next]++
	}
}

func (d *Dictionary) nextWord(w1, w2 word) (word, bool) {
	choices, ok := d.chains[entry{w1, w2}]
	if !ok || len(choices) == 0 {
		return word{}, false
	}

	var total uint32
	for _, count := range choices {
		total += count
	}
	if total == 0 {
		return word{}, false
	}

	r := rand.Uint32N(total)
	for w, count := range choices {
		if r < count {
			return w, true
		}
		r -= count
	}
	return word{}, false
}

// GenerateSentence samples forward from (Start1, Start2) until End or a
// dead end, joining the visited words with spaces. Returns "" if nothing
// has been learned yet.
func (d *Dictionary) GenerateSentence() string {
	w1, w2 := start1, start2

	var words []string
	for {
		next, ok := d.nextWord(w1, w2)
		if !ok || next == end {
			break
		}
		if next.kind == wordIndex && int(next.index) < len(d.words) {
			words = append(words, d.words[next.index])
		}
		w1, w2 = w2, next
	}
	return strings.Join(words, " ")
}

func writeU32(buf *bytes.Buffer, v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	buf.Write(b[:])
}

func readU32(r io.Reader) (uint32, error) {
	var b [4]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b[:]), nil
}

// Bytes serializes the dictionary to the on-disk format: word count and
// words (length-prefixed), then chain entry count and entries (each a
// pair of 5-byte word records followed by a count-prefixed result set).
func (d *Dictionary) Bytes() []byte {
	var buf bytes.Buffer

	writeU32(&buf, uint32(len(d.words)))
	for _, w := range d.words {
		writeU32(&buf, uint32(len(w)))
		buf.WriteString(w)
	}

	writeU32(&buf, uint32(len(d.chains)))
	for e, choices := range d.chains {
		b0 := e[0].toBytes()
		b1 := e[1].toBytes()
		buf.Write(b0[:])
		buf.Write(b1[:])
		writeU32(&buf, uint32(len(choices)))
		for w, count := range choices {
			bw := w.toBytes()
			buf.Write(bw[:])
			writeU32(&buf, count)
		}
	}

	return buf.Bytes()
}

// ErrInvalidDictionary is returned by DictionaryFromBytes when data is
// truncated or malformed.
var ErrInvalidDictionary = errors.New("randomchat: invalid dictionary data")

// DictionaryFromBytes parses the format produced by Bytes.
func DictionaryFromBytes(data []byte) (*Dictionary, error) {
	r := bytes.NewReader(data)

	numWords, err := readU32(r)
	if err != nil {
		return nil, ErrInvalidDictionary
	}
	words := make([]string, 0, numWords)
	index := make(map[string]uint32, numWords)
	for i := uint32(0); i < numWords; i++ {
		n, err := readU32(r)
		if err != nil {
			return nil, ErrInvalidDictionary
		}
		buf := make([]byte, n)
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, ErrInvalidDictionary
		}
		s := string(buf)
		words = append(words, s)
		index[strings.ToLower(s)] = i
	}

	numEntries, err := readU32(r)
	if err != nil {
		return nil, ErrInvalidDictionary
	}
	chains := make(map[entry]map[word]uint32, numEntries)
	for i := uint32(0); i < numEntries; i++ {
		var wb [5]byte
		if _, err := io.ReadFull(r, wb[:]); err != nil {
			return nil, ErrInvalidDictionary
		}
		w1, ok := wordFromBytes(wb[:])
		if !ok {
			return nil, ErrInvalidDictionary
		}
		if _, err := io.ReadFull(r, wb[:]); err != nil {
			return nil, ErrInvalidDictionary
		}
		w2, ok := wordFromBytes(wb[:])
		if !ok {
			return nil, ErrInvalidDictionary
		}

		numResults, err := readU32(r)
		if err != nil {
			return nil, ErrInvalidDictionary
		}
		results := make(map[word]uint32, numResults)
		for j := uint32(0); j < numResults; j++ {
			if _, err := io.ReadFull(r, wb[:]); err != nil {
				return nil, ErrInvalidDictionary
			}
			w, ok := wordFromBytes(wb[:])
			if !ok {
				return nil, ErrInvalidDictionary
			}
			count, err := readU32(r)
			if err != nil {
				return nil, ErrInvalidDictionary
			}
			results[w] = count
		}
		chains[entry{w1, w2}] = results
	}

	return &Dictionary{words: words, index: index, chains: chains}, nil
}
