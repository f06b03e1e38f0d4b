package api

import (
	"context"
	"fmt"
	"strings"

	"github.com/FocuswithJustin/pedigree/core/errors"
	"github.com/FocuswithJustin/pedigree/core/gedcom"
	"github.com/FocuswithJustin/pedigree/core/kinship"
	"github.com/FocuswithJustin/pedigree/internal/logging"
	"github.com/FocuswithJustin/pedigree/internal/validation"
)

// Query operations shared by the REST routes and the websocket channel.
const (
	OpCommon    = "common"
	OpPath      = "path"
	OpDistance  = "distance"
	OpRelative  = "relative"
	OpAncestors = "ancestors"
)

// QueryRequest is one kinship question. B is ignored by OpAncestors.
type QueryRequest struct {
	ID      string `json:"id,omitempty"`
	Op      string `json:"op"`
	A       string `json:"a"`
	B       string `json:"b,omitempty"`
	Compact bool   `json:"compact,omitempty"`
}

// QueryResponse answers the QueryRequest with the same ID.
type QueryResponse struct {
	ID     string    `json:"id"`
	Op     string    `json:"op"`
	Result any       `json:"result,omitempty"`
	Error  *APIError `json:"error,omitempty"`
}

// PersonRef is the short form of an individual used in results.
type PersonRef struct {
	Xref string `json:"xref"`
	Name string `json:"name,omitempty"`
}

// FamilyRef is a family at a generation distance.
type FamilyRef struct {
	Xref     string      `json:"xref"`
	Distance int         `json:"distance"`
	Parents  []PersonRef `json:"parents,omitempty"`
}

// CommonResult lists the nearest common ancestors of two individuals.
type CommonResult struct {
	Ancestors []PersonRef `json:"ancestors"`
	Families  []FamilyRef `json:"families"`
}

// PathStep is one hop of a relationship path.
type PathStep struct {
	PersonRef
	Direction string `json:"direction"`
}

// PathResult is the annotated path from A to B.
type PathResult struct {
	Found bool       `json:"found"`
	Steps []PathStep `json:"steps,omitempty"`
}

// DistanceResult is how many generations B lies above A.
type DistanceResult struct {
	Found       bool `json:"found"`
	Generations int  `json:"generations,omitempty"`
}

// RelativeResult reports whether A and B share any ancestry.
type RelativeResult struct {
	Related bool `json:"related"`
}

func (s *Server) individual(xref string) (*gedcom.Individual, error) {
	if strings.TrimSpace(xref) == "" {
		return nil, errors.Wrap(errors.ErrInvalidInput, "missing individual xref")
	}
	x, err := validation.NormalizeXref(xref)
	if err != nil {
		return nil, errors.Wrap(errors.ErrInvalidInput, err.Error())
	}
	ind, ok := s.tree.Individual(x)
	if !ok {
		return nil, errors.NewNotFound("individual", x)
	}
	return ind, nil
}

// Query resolves req against the tree. Results are memoized per operation
// and normalized operands; the tree never changes so entries only age out.
func (s *Server) Query(ctx context.Context, req QueryRequest) (any, error) {
	switch req.Op {
	case OpCommon, OpPath, OpDistance, OpRelative, OpAncestors:
	default:
		return nil, errors.NewUnsupported("query op "+req.Op, "expected common, path, distance, relative or ancestors")
	}
	a, err := s.individual(req.A)
	if err != nil {
		return nil, err
	}
	var b *gedcom.Individual
	if req.Op != OpAncestors {
		if b, err = s.individual(req.B); err != nil {
			return nil, err
		}
	}

	key := fmt.Sprintf("%s|%s|%s|%t", req.Op, a.Xref(), xrefOf(b), req.Compact)
	result, err := s.memo.GetOrCompute(key, func() (any, error) {
		return s.compute(req.Op, a, b, req.Compact)
	})
	if err != nil {
		return nil, err
	}
	logging.QueryEvent(ctx, req.Op, a.Xref(), xrefOf(b), found(result))
	return result, nil
}

func (s *Server) compute(op string, a, b *gedcom.Individual, compact bool) (any, error) {
	switch op {
	case OpCommon:
		res := CommonResult{Ancestors: []PersonRef{}, Families: []FamilyRef{}}
		for _, ind := range kinship.CommonAncestors(a, b) {
			res.Ancestors = append(res.Ancestors, personRef(ind))
		}
		for _, fd := range kinship.CommonAncestorFamilies(a, b) {
			res.Families = append(res.Families, familyRef(fd))
		}
		return res, nil
	case OpPath:
		steps, ok := kinship.PathToRelative(a, b, compact)
		res := PathResult{Found: ok}
		for _, st := range steps {
			res.Steps = append(res.Steps, PathStep{PersonRef: personRef(st.Individual), Direction: st.Direction.String()})
		}
		return res, nil
	case OpDistance:
		d, ok := kinship.DistanceToAncestor(a, b)
		return DistanceResult{Found: ok, Generations: d}, nil
	case OpRelative:
		return RelativeResult{Related: kinship.IsRelative(a, b)}, nil
	case OpAncestors:
		fams := []FamilyRef{}
		for _, fd := range kinship.AncestorFamilies(a) {
			fams = append(fams, familyRef(fd))
		}
		return fams, nil
	}
	return nil, errors.NewUnsupported("query op "+op, "expected common, path, distance, relative or ancestors")
}

func personRef(ind *gedcom.Individual) PersonRef {
	return PersonRef{Xref: ind.Xref(), Name: displayName(ind)}
}

func familyRef(fd kinship.FamilyDistance) FamilyRef {
	ref := FamilyRef{Xref: fd.Family.Xref(), Distance: fd.Distance}
	for _, p := range fd.Family.Parents() {
		ref.Parents = append(ref.Parents, personRef(p))
	}
	return ref
}

// displayName uses the first NAME line; ambiguity does not matter for display.
func displayName(ind *gedcom.Individual) string {
	names := ind.Names()
	if len(names) == 0 {
		return ""
	}
	return names[0].String()
}

func xrefOf(ind *gedcom.Individual) string {
	if ind == nil {
		return ""
	}
	return ind.Xref()
}

func found(result any) bool {
	switch r := result.(type) {
	case CommonResult:
		return len(r.Ancestors) > 0
	case PathResult:
		return r.Found
	case DistanceResult:
		return r.Found
	case RelativeResult:
		return r.Related
	case []FamilyRef:
		return len(r) > 0
	}
	return false
}
