/*
Package utils provides decorators shared by every extension: panic
recovery, request logging and the savepoint that makes each operation
all-or-nothing.
*/
package utils
