// Package cache provides content-addressed storage for loaded haystacks.
//
// Word lists fetched from the network or a registry are stored under their
// digest so later loads can skip the transfer. Because keys are content
// digests, implementations can verify hits before returning them.
package cache
