package passhash

import "context"

import "golang.org/x/sync/errgroup"


//============================================= Hash Group By


// GroupBy
//	Groups the values of src by key.
//	src is partitioned recursively until every bucket fits the memory budget, then each bucket is grouped in memory.
//	Groups keep first seen order within a bucket, and buckets are emitted in path order.
//
// Parameters:
//	ctx: cancels grouping
//	src: the records to group
//
// Returns:
//	One group per distinct key or an error
func (passHash *PassHash) GroupBy(ctx context.Context, src RecordSource) ([]Group, error) {
	buckets, partitionErr := passHash.PartitionRecursive(ctx, src)
	if partitionErr != nil { return nil, partitionErr }
	defer CloseBuckets(buckets)

	results := make([][]Group, len(buckets))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(passHash.Workers)

	for bucketIdx, bucket := range buckets {
		group.Go(func() error {
			if ctxErr := groupCtx.Err(); ctxErr != nil { return ctxErr }

			grouped, groupErr := groupBucket(bucket.Partition)
			if groupErr != nil { return newPartitionError(bucket.Pass, bucket.Path[len(bucket.Path) - 1], groupErr) }

			results[bucketIdx] = grouped
			return nil
		})
	}

	waitErr := group.Wait()
	if waitErr != nil { return nil, waitErr }

	return flatten(results), nil
}

// Distinct
//	The distinct keys of src, in the same order GroupBy would emit them.
func (passHash *PassHash) Distinct(ctx context.Context, src RecordSource) ([][]byte, error) {
	groups, groupErr := passHash.GroupBy(ctx, src)
	if groupErr != nil { return nil, groupErr }

	keys := make([][]byte, len(groups))
	for idx, group := range groups { keys[idx] = group.Key }

	return keys, nil
}

// groupBucket
//	In-memory grouping of a single bucket.
func groupBucket(partition Partition) ([]Group, error) {
	positions := make(map[string]int)
	var groups []Group

	iterErr := partition.Iterate(func(record Record) error {
		position, ok := positions[string(record.Key)]
		if ! ok {
			position = len(groups)
			positions[string(record.Key)] = position
			groups = append(groups, Group{ Key: record.Key })
		}

		groups[position].Values = append(groups[position].Values, record.Value)
		return nil
	})

	if iterErr != nil { return nil, iterErr }
	return groups, nil
}
