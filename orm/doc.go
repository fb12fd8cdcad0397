/*
Package orm provides an easy to use db wrapper

Break state space into prefixed sections called Buckets.
Each bucket contains only one type of Model, which is
stored under its primary key. Secondary indexes point
back at the primary key and are maintained for you on
every Put and Delete.

Primary keys are usually allocated with a Sequence,
which encodes the counter as 8 byte big endian, so
iterating over a bucket or an index returns models in
creation order.
*/
package orm
