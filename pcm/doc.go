// Package pcm handles the raw capture format: headerless little-endian
// signed 16-bit samples, optionally interleaved across channels.
//
// Besides the codec it converts logged CSV captures (timestamp,value rows)
// into PCM and writes the plain-text info sidecar that accompanies each
// .pcm file produced by the tools.
package pcm
