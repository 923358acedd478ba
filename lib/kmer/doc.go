/*
Package kmer implements the 2-bit encoding of DNA words (k-mers) used as vertex
identifiers throughout dKG.

A word of length w (1 <= w <= 32) is packed into a uint64, two bits per base,
the first base in the most significant pair:

	A = 0, C = 1, G = 2, T = 3

Every k-mer has a reverse complement (reverse the word, swap A<->T and C<->G).
Both strands denote the same vertex of the de Bruijn graph; the smaller of the
two encodings is the canonical key ("lower key") under which the vertex is stored.

Adjacency is kept as an EdgeMask relative to one orientation: bits 0-3 mark
children reached by appending base b, bits 4-7 mark parents reached by
prepending base b. FlipMask converts a mask to the reverse complement orientation.
*/
package kmer
