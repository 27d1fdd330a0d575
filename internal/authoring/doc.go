// Package authoring maps origin commit authors to destination authors.
//
// Author is an immutable identity value parsed from "name <email>". Authoring
// decides, for every origin identity, whether the destination may keep it or
// must substitute the configured default author.
package authoring
