//go:build onnx

package privacy

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	ort "github.com/yalue/onnxruntime_go"
)

// ONNXAvailable reports whether the ONNX name backend is compiled in.
const ONNXAvailable = true

// Token-classification labels for the NER head.
const (
	labelOutside      = 0
	labelBeginPerson  = 1
	labelInsidePerson = 2
)

// ModelRecognizer runs an ONNX token-classification model over the text and
// reports PERSON spans. The model directory must contain model.onnx and
// vocab.txt (WordPiece vocabulary).
type ModelRecognizer struct {
	session *ort.DynamicAdvancedSession
	vocab   map[string]int64
	unkID   int64
	clsID   int64
	sepID   int64
}

// NewModelRecognizer loads the model and vocabulary from modelPath.
func NewModelRecognizer(modelPath string) (NameRecognizer, error) {
	if !ort.IsInitialized() {
		if err := ort.InitializeEnvironment(); err != nil {
			return nil, fmt.Errorf("failed to initialize onnx runtime: %w", err)
		}
	}

	vocab, err := loadVocab(filepath.Join(modelPath, "vocab.txt"))
	if err != nil {
		return nil, err
	}

	session, err := ort.NewDynamicAdvancedSession(
		filepath.Join(modelPath, "model.onnx"),
		[]string{"input_ids", "attention_mask"},
		[]string{"logits"},
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create onnx session: %w", err)
	}

	r := &ModelRecognizer{session: session, vocab: vocab}
	r.unkID = vocabID(vocab, "[UNK]")
	r.clsID = vocabID(vocab, "[CLS]")
	r.sepID = vocabID(vocab, "[SEP]")
	return r, nil
}

// Close releases the underlying session.
func (r *ModelRecognizer) Close() error {
	return r.session.Destroy()
}

// Recognize implements NameRecognizer.
func (r *ModelRecognizer) Recognize(text string) []Span {
	words := tokenPattern.FindAllStringIndex(text, -1)
	if len(words) == 0 {
		return nil
	}

	ids := []int64{r.clsID}
	wordOf := []int{-1} // maps token position to word index
	for wi, m := range words {
		for _, piece := range r.wordpiece(strings.ToLower(text[m[0]:m[1]])) {
			ids = append(ids, piece)
			wordOf = append(wordOf, wi)
		}
	}
	ids = append(ids, r.sepID)
	wordOf = append(wordOf, -1)

	n := int64(len(ids))
	mask := make([]int64, n)
	for i := range mask {
		mask[i] = 1
	}

	inputIDs, err := ort.NewTensor(ort.NewShape(1, n), ids)
	if err != nil {
		return nil
	}
	defer inputIDs.Destroy()
	attention, err := ort.NewTensor(ort.NewShape(1, n), mask)
	if err != nil {
		return nil
	}
	defer attention.Destroy()

	outputs := []ort.Value{nil}
	if err := r.session.Run([]ort.Value{inputIDs, attention}, outputs); err != nil {
		return nil
	}
	logits := outputs[0].(*ort.Tensor[float32])
	defer logits.Destroy()

	data := logits.GetData()
	classes := len(data) / int(n)
	personWord := make(map[int]bool)
	for i := 0; i < int(n); i++ {
		if wordOf[i] < 0 {
			continue
		}
		best, bestScore := 0, data[i*classes]
		for c := 1; c < classes; c++ {
			if data[i*classes+c] > bestScore {
				best, bestScore = c, data[i*classes+c]
			}
		}
		if best == labelBeginPerson || best == labelInsidePerson {
			personWord[wordOf[i]] = true
		}
	}

	// Merge adjacent person words into spans.
	var spans []Span
	for wi := 0; wi < len(words); wi++ {
		if !personWord[wi] {
			continue
		}
		start, end := words[wi][0], words[wi][1]
		for wi+1 < len(words) && personWord[wi+1] {
			wi++
			end = words[wi][1]
		}
		spans = append(spans, Span{Start: start, End: end})
	}
	return spans
}

// wordpiece greedily splits a lowercase word into vocabulary pieces.
func (r *ModelRecognizer) wordpiece(word string) []int64 {
	var pieces []int64
	for len(word) > 0 {
		end := len(word)
		prefix := ""
		if len(pieces) > 0 {
			prefix = "##"
		}
		var id int64 = -1
		for end > 0 {
			if v, ok := r.vocab[prefix+word[:end]]; ok {
				id = v
				break
			}
			end--
		}
		if id < 0 {
			return []int64{r.unkID}
		}
		pieces = append(pieces, id)
		word = word[end:]
	}
	return pieces
}

func loadVocab(path string) (map[string]int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open vocabulary: %w", err)
	}
	defer f.Close()

	vocab := make(map[string]int64)
	scanner := bufio.NewScanner(f)
	var i int64
	for scanner.Scan() {
		vocab[scanner.Text()] = i
		i++
	}
	return vocab, scanner.Err()
}

func vocabID(vocab map[string]int64, token string) int64 {
	if id, ok := vocab[token]; ok {
		return id
	}
	return 0
}
