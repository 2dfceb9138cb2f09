package quiz

import (
	"fmt"

	"github.com/vytor/flashdeck/internal/models"
	"github.com/vytor/flashdeck/internal/srs"
)

const (
	// DefaultQuestionCount is used when the caller asks for zero questions.
	DefaultQuestionCount = 10

	optionCount = 4
)

// Generate builds up to count questions from items, each item used at most
// once. Question types are drawn uniformly from allowed; an empty allowed list
// means every type. Multiple choice needs at least four items overall and is
// dropped below that, falling back to free text when nothing else is allowed.
func Generate(items []models.Item, count int, allowed []models.QuestionType, rng srs.Rand) ([]models.QuizQuestion, error) {
	if len(allowed) == 0 {
		allowed = models.AllQuestionTypes
	}
	for _, t := range allowed {
		if !t.IsValid() {
			return nil, fmt.Errorf("%w: %q", ErrInvalidQuestionType, t)
		}
	}

	if count <= 0 {
		count = DefaultQuestionCount
	}
	count = min(count, len(items))

	eligible := eligibleTypes(allowed, len(items))

	picked := shuffled(items, rng)[:count]
	questions := make([]models.QuizQuestion, 0, count)
	for i := range picked {
		it := picked[i]
		q := models.QuizQuestion{
			ItemID:        it.ID,
			Prompt:        it.Front,
			CorrectAnswer: it.Back,
		}

		switch eligible[rng.Intn(len(eligible))] {
		case models.QuestionMultipleChoice:
			q.Type = models.QuestionMultipleChoice
			q.Options = options(it, others(items, it.ID), rng)
		case models.QuestionTrueFalse:
			q.Type = models.QuestionTrueFalse
			q.Statement, q.IsTrue = statement(it, rng.Intn(2) == 1, others(items, it.ID), rng)
		default:
			q.Type = models.QuestionFreeText
		}
		questions = append(questions, q)
	}
	return questions, nil
}

func eligibleTypes(allowed []models.QuestionType, itemCount int) []models.QuestionType {
	out := make([]models.QuestionType, 0, len(allowed))
	for _, t := range allowed {
		if t == models.QuestionMultipleChoice && itemCount < optionCount {
			continue
		}
		out = append(out, t)
	}
	if len(out) == 0 {
		out = append(out, models.QuestionFreeText)
	}
	return out
}

func shuffled(items []models.Item, rng srs.Rand) []models.Item {
	out := make([]models.Item, len(items))
	copy(out, items)
	rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}

func others(items []models.Item, id int64) []models.Item {
	out := make([]models.Item, 0, len(items))
	for _, it := range items {
		if it.ID != id {
			out = append(out, it)
		}
	}
	return out
}

// options returns the correct back text plus up to three distractors, shuffled.
// No text is offered twice, so an item sharing the correct back is never a
// distractor.
func options(it models.Item, pool []models.Item, rng srs.Rand) []string {
	pool = shuffled(pool, rng)
	opts := []string{it.Back}
	seen := map[string]bool{it.Back: true}
	for _, d := range pool {
		if len(opts) == optionCount {
			break
		}
		if seen[d.Back] {
			continue
		}
		seen[d.Back] = true
		opts = append(opts, d.Back)
	}
	rng.Shuffle(len(opts), func(i, j int) { opts[i], opts[j] = opts[j], opts[i] })
	return opts
}

// statement picks the text shown in a true/false question and its truth. A
// false statement borrows another item's differing back text; when there is
// none it falls back to the item's own, so the question is trivially true.
func statement(it models.Item, isTrue bool, pool []models.Item, rng srs.Rand) (string, bool) {
	if isTrue {
		return it.Back, true
	}
	wrong := make([]string, 0, len(pool))
	for _, d := range pool {
		if d.Back != it.Back {
			wrong = append(wrong, d.Back)
		}
	}
	if len(wrong) == 0 {
		return it.Back, true
	}
	return wrong[rng.Intn(len(wrong))], false
}
