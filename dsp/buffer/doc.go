// Package buffer provides reusable int16 sample blocks and a pool for
// handing audio between a device callback and the capture loop without
// allocating per period.
package buffer
