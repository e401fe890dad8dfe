package passhash

import "context"
import "errors"

import "github.com/RoaringBitmap/roaring/v2"

import "github.com/sirgallo/passhash/common/hashfunc"


//============================================= Partitioner


// Partition
//	Routes every record of src to one of NumPartitions partitions using the hash function of the given pass.
//	The bucket is the unsigned reduction of the key hash, so negative hashes are handled.
//
// Parameters:
//	ctx: checked periodically while records are routed
//	src: the records to partition
//	pass: selects the member of the hash family
//
// Returns:
//	The partition set, which the caller must close, or an error
func (passHash *PassHash) Partition(ctx context.Context, src RecordSource, pass int) (*PartitionSet, error) {
	if openErr := passHash.ensureOpen(); openErr != nil { return nil, openErr }
	return passHash.partition(ctx, src, pass)
}

// partition
//	Partition without the closed check, so operators started before Close run to completion.
func (passHash *PassHash) partition(ctx context.Context, src RecordSource, pass int) (*PartitionSet, error) {
	set := passHash.newPartitionSet(pass)
	hash := hashfunc.GetHashFunction(pass)
	routed := 0

	iterErr := src.Iterate(func(record Record) error {
		if routed % ctxCheckInterval == 0 {
			if ctxErr := ctx.Err(); ctxErr != nil { return ctxErr }
		}

		routed++
		index := hashfunc.BucketIndex(hash(hashfunc.Bytes(record.Key)), passHash.NumPartitions)

		addErr := set.Partitions[index].Add(record)
		if addErr != nil { return newPartitionError(pass, index, addErr) }

		set.NonEmpty.Add(uint32(index))
		return nil
	})

	if iterErr != nil {
		set.Close()
		return nil, iterErr
	}

	return set, nil
}

// PartitionRecursive
//	Partitions src starting at FirstPass. Any partition holding more than MemoryBudget records is partitioned again with the next pass,
//	until LastPass is reached. Oversized partitions at the last pass are kept as they are.
//
// Parameters:
//	ctx: cancels partitioning between records
//	src: the records to partition
//
// Returns:
//	The non-empty leaf buckets ordered by path, which the caller must close, or an error
func (passHash *PassHash) PartitionRecursive(ctx context.Context, src RecordSource) ([]*Bucket, error) {
	if openErr := passHash.ensureOpen(); openErr != nil { return nil, openErr }

	var buckets []*Bucket

	partitionErr := passHash.partitionRecursive(ctx, src, FirstPass, nil, &buckets)
	if partitionErr != nil {
		CloseBuckets(buckets)
		return nil, partitionErr
	}

	return buckets, nil
}

// partitionRecursive
//	Depth first: a partition is either split further or appended to buckets before the next index is visited.
func (passHash *PassHash) partitionRecursive(ctx context.Context, src RecordSource, pass int, path []int, buckets *[]*Bucket) error {
	set, partitionErr := passHash.partition(ctx, src, pass)
	if partitionErr != nil { return partitionErr }

	owned := set.Partitions
	defer func() {
		for _, partition := range owned {
			if partition != nil { partition.Close() }
		}
	}()

	for _, index := range set.NonEmpty.ToArray() {
		partition := set.Partitions[index]
		childPath := append(append(make([]int, 0, len(path) + 1), path...), int(index))

		if partition.Len() > passHash.MemoryBudget && pass < passHash.LastPass() {
			cLog.Debug("repartitioning partition", childPath, "records:", partition.Len(), "next pass:", pass + 1)

			recurseErr := passHash.partitionRecursive(ctx, partition, pass + 1, childPath, buckets)
			if recurseErr != nil { return recurseErr }

			continue
		}

		if partition.Len() > passHash.MemoryBudget {
			cLog.Warn("partition", childPath, "still holds", partition.Len(), "records at the last pass")
		}

		*buckets = append(*buckets, &Bucket{ Pass: pass, Path: childPath, Partition: partition })
		owned[index] = nil
	}

	return nil
}

// newPartitionSet
//	One empty partition per bucket.
func (passHash *PassHash) newPartitionSet(pass int) *PartitionSet {
	partitions := make([]Partition, passHash.NumPartitions)
	for index := range partitions { partitions[index] = passHash.newPartition() }

	return &PartitionSet{ Pass: pass, Partitions: partitions, NonEmpty: roaring.New() }
}

// Close
//	Closes every partition in the set and returns the combined errors.
func (set *PartitionSet) Close() error {
	var closeErrs []error
	for _, partition := range set.Partitions {
		if closeErr := partition.Close(); closeErr != nil { closeErrs = append(closeErrs, closeErr) }
	}

	return errors.Join(closeErrs...)
}

// Close
//	Releases the bucket's partition.
func (bucket *Bucket) Close() error {
	return bucket.Partition.Close()
}

// CloseBuckets
//	Closes every bucket and returns the combined errors.
func CloseBuckets(buckets []*Bucket) error {
	var closeErrs []error
	for _, bucket := range buckets {
		if closeErr := bucket.Close(); closeErr != nil { closeErrs = append(closeErrs, closeErr) }
	}

	return errors.Join(closeErrs...)
}
