// Package domain holds the entities, transfer objects and error taxonomy shared
// by every layer: repositories, use-cases, the coordinator and the outer
// surfaces.
//
// Entities are plain records. Their ids are assigned by whichever repository
// owns them, so an id is only unique within one backing store. Switching the
// active repository type of a domain therefore changes the id space as well,
// which is why cached query results are reset on every switch.
package domain
