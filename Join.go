package passhash

import "context"

import "github.com/RoaringBitmap/roaring/v2"
import "golang.org/x/sync/errgroup"


//============================================= Grace Hash Join


// Join
//	Equi-joins left and right on their keys.
//	Both sides are partitioned with FirstPass and only partitions that are non-empty on both sides are joined.
//	Each pair is joined by an in-memory build and probe when its smaller side fits the memory budget,
//	otherwise both sides are partitioned again with the next pass.
//
// Parameters:
//	ctx: cancels the join, also cancelled internally when a partition pair fails
//	left: the left input
//	right: the right input
//
// Returns:
//	Every matching pair, grouped by first pass partition, or an error
func (passHash *PassHash) Join(ctx context.Context, left, right RecordSource) ([]JoinedRecord, error) {
	if openErr := passHash.ensureOpen(); openErr != nil { return nil, openErr }

	leftSet, leftErr := passHash.partition(ctx, left, FirstPass)
	if leftErr != nil { return nil, leftErr }
	defer leftSet.Close()

	rightSet, rightErr := passHash.partition(ctx, right, FirstPass)
	if rightErr != nil { return nil, rightErr }
	defer rightSet.Close()

	pairs := roaring.And(leftSet.NonEmpty, rightSet.NonEmpty).ToArray()
	results := make([][]JoinedRecord, len(pairs))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(passHash.Workers)

	for pairIdx, index := range pairs {
		group.Go(func() error {
			joined, joinErr := passHash.joinPartitions(groupCtx, leftSet.Partitions[index], rightSet.Partitions[index], FirstPass)
			if joinErr != nil { return newPartitionError(FirstPass, int(index), joinErr) }

			results[pairIdx] = joined
			return nil
		})
	}

	waitErr := group.Wait()
	if waitErr != nil { return nil, waitErr }

	return flatten(results), nil
}

// joinPartitions
//	Joins one partition pair produced by pass.
func (passHash *PassHash) joinPartitions(ctx context.Context, left, right Partition, pass int) ([]JoinedRecord, error) {
	if ctxErr := ctx.Err(); ctxErr != nil { return nil, ctxErr }

	buildIsLeft := left.Len() <= right.Len()
	build, probe := left, right
	if ! buildIsLeft { build, probe = right, left }

	if build.Len() > passHash.MemoryBudget && pass < passHash.LastPass() {
		cLog.Debug("repartitioning join pair with", build.Len(), "build records on pass", pass + 1)
		return passHash.repartitionJoin(ctx, left, right, pass + 1)
	}

	if build.Len() > passHash.MemoryBudget {
		cLog.Warn("building", build.Len(), "records in memory at the last pass")
	}

	return buildAndProbe(build, probe, buildIsLeft)
}

// repartitionJoin
//	Splits both sides of a pair with the next pass and joins the resulting pairs in index order.
func (passHash *PassHash) repartitionJoin(ctx context.Context, left, right Partition, pass int) ([]JoinedRecord, error) {
	leftSet, leftErr := passHash.partition(ctx, left, pass)
	if leftErr != nil { return nil, leftErr }
	defer leftSet.Close()

	rightSet, rightErr := passHash.partition(ctx, right, pass)
	if rightErr != nil { return nil, rightErr }
	defer rightSet.Close()

	var joined []JoinedRecord
	for _, index := range roaring.And(leftSet.NonEmpty, rightSet.NonEmpty).ToArray() {
		pairJoined, joinErr := passHash.joinPartitions(ctx, leftSet.Partitions[index], rightSet.Partitions[index], pass)
		if joinErr != nil { return nil, newPartitionError(pass, int(index), joinErr) }

		joined = append(joined, pairJoined...)
	}

	return joined, nil
}

// buildAndProbe
//	Loads the build side into a map keyed by the raw key bytes, then streams the probe side through it.
//	Matches keep the left and right orientation of the original inputs.
func buildAndProbe(build, probe Partition, buildIsLeft bool) ([]JoinedRecord, error) {
	table := make(map[string][][]byte, build.Len())

	buildErr := build.Iterate(func(record Record) error {
		table[string(record.Key)] = append(table[string(record.Key)], record.Value)
		return nil
	})

	if buildErr != nil { return nil, buildErr }

	var joined []JoinedRecord
	probeErr := probe.Iterate(func(record Record) error {
		for _, buildValue := range table[string(record.Key)] {
			if buildIsLeft {
				joined = append(joined, JoinedRecord{ Key: record.Key, Left: buildValue, Right: record.Value })
			} else { joined = append(joined, JoinedRecord{ Key: record.Key, Left: record.Value, Right: buildValue }) }
		}

		return nil
	})

	if probeErr != nil { return nil, probeErr }
	return joined, nil
}

func flatten[T any](chunks [][]T) []T {
	total := 0
	for _, chunk := range chunks { total += len(chunk) }

	flat := make([]T, 0, total)
	for _, chunk := range chunks { flat = append(flat, chunk...) }

	return flat
}
