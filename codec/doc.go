/*
Package codec implements the protobuf wire format for the models and
messages of this application.

Every persisted entity and every message implements weave.Persistent by
writing its fields with a Buffer and reading them back with a Decoder. The
produced bytes are compatible with protoc generated code for the same field
numbers, so external clients can decode the state with a plain .proto
declaration.
*/
package codec
