// Package transform implements document transforms, which are used by the
// editor to treat changes as first-class values, which can be saved, shared,
// and reasoned about.
package transform

import "github.com/richtext/docmodel/model"

// Step is a document change. Applying a step produces a new document, along
// with the information needed to revert it (Invert) and to move positions
// from the pre-step document to the post-step one (GetMap).
type Step interface {
	// Apply applies this step to the given document, returning a result
	// object that either indicates failure or provides a new document.
	Apply(doc *model.Node) StepResult

	// GetMap returns a position map that describes the positions in the
	// old document that were affected by this step.
	GetMap() *StepMap

	// Invert returns the inverse of this step. Needs the document as it
	// was before the step as argument.
	Invert(doc *model.Node) Step

	// Map creates a new step by updating this step's positions according
	// to the given mapping. Returns nil when the step fully became
	// meaningless (where the document changes affected by this step have
	// been deleted).
	Map(mapping Mappable) Step

	// Merge attempts to merge this step with another one, to be applied
	// directly after it. Returns false to indicate they could not be
	// merged.
	Merge(other Step) (Step, bool)

	// ToJSON serializes this step to a JSON-compatible representation.
	ToJSON() map[string]interface{}
}

// StepResult is the result of applying a step. Wraps the new document or, if
// the step failed, a string describing the failure.
type StepResult struct {
	// Doc is the transformed document, nil on failure.
	Doc *model.Node
	// Failed holds a failure message, or is empty when the step applied.
	Failed string
}

// Fail makes a failed step result.
func Fail(message string) StepResult {
	return StepResult{Failed: message}
}

// okResult makes a successful step result.
func okResult(doc *model.Node) StepResult {
	return StepResult{Doc: doc}
}

// FromReplace makes a step result from a document and a replace operation,
// turning any replace error into a failed result.
func FromReplace(doc *model.Node, from, to int, slice *model.Slice) StepResult {
	newDoc, err := doc.Replace(from, to, slice)
	if err != nil {
		return Fail(err.Error())
	}
	return okResult(newDoc)
}
