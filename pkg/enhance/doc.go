// Package enhance annotates dependency graphs with richer metadata before
// layout: refined node types, descriptions, and logical groups.
//
// Enhancement is strictly advisory. The [Enhancer] contract is that the
// graph stays valid whatever the annotation source returns: unknown ids
// and out-of-set types are dropped, never propagated. [OpenAI] asks a chat
// model; [Heuristic] is the offline fallback and the default when no API
// key is configured.
package enhance
