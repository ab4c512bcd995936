package tree

import (
	"context"

	"github.com/sdejongh/syncreplica/pkg/models"
)

// Plan walks both trees without modifying them and returns the operations
// a reconciliation pass would perform, in the order it would perform them.
func (c *Comparator) Plan(ctx context.Context, left, right string) ([]models.Difference, error) {
	var differences []models.Difference
	if err := c.plan(ctx, left, right, false, &differences); err != nil {
		return nil, err
	}
	return differences, nil
}

func (c *Comparator) plan(ctx context.Context, left, right string, nested bool, out *[]models.Difference) error {
	diff, err := c.compare(ctx, left, right, nested, false)
	if err != nil {
		return err
	}

	for _, name := range diff.CommonDirs {
		if err := c.plan(ctx, diff.LeftChild(name), diff.RightChild(name), true, out); err != nil {
			return err
		}
	}

	for _, name := range diff.LeftOnly {
		entry := diff.LeftEntries[name]
		*out = append(*out, models.Difference{
			RelativePath: diff.RightChild(name),
			Action:       models.ActionCreate,
			Kind:         entry.Kind,
			Details:      "only in source",
		})
	}

	for _, name := range diff.DiffFiles {
		*out = append(*out, models.Difference{
			RelativePath: diff.RightChild(name),
			Action:       models.ActionModify,
			Kind:         models.KindFile,
			Details:      diff.Reasons[name],
		})
	}

	for _, name := range diff.TypeConflicts {
		src, dst := diff.LeftEntries[name], diff.RightEntries[name]
		*out = append(*out, models.Difference{
			RelativePath: diff.RightChild(name),
			Action:       models.ActionReplace,
			Kind:         src.Kind,
			Details:      string(dst.Kind) + " in replica, " + string(src.Kind) + " in source",
		})
	}

	for _, name := range diff.RightOnly {
		entry := diff.RightEntries[name]
		*out = append(*out, models.Difference{
			RelativePath: diff.RightChild(name),
			Action:       models.ActionDelete,
			Kind:         entry.Kind,
			Details:      "only in replica",
		})
	}

	return nil
}
