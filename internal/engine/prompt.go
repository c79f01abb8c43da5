package engine

// LLM prompt templates for transcript summaries: data only, no logic.

const summarySystem = `You are an expert educational content analyst. Create detailed summaries preserving all key information and direct quotes.`

const mergeSystem = `You are an expert educational content analyst who creates comprehensive, unified documents from multiple sources. You preserve all details while organizing content logically and removing only true duplications.`

// summarySections is the final document layout shared by the single-pass and merge prompts.
const summarySections = `## Executive Summary
A comprehensive 4-5 sentence overview capturing the essence of the video.

## Key Themes & Topics
List and explain the main themes covered, with detailed descriptions of each.

## Detailed Key Points
For each major point discussed in the video:
- **Point Title**: Clear, thorough explanation of the concept
- Include direct quotes from the transcript where they add emphasis or clarity (format as: > "exact quote")
- Explain the significance, implications, and connections to other points

## Notable Quotes & Insights
Extract 5-10 of the most impactful direct quotes:
> "Quote here" - with brief context of why this matters

## Practical Applications
All actionable takeaways and how the knowledge can be applied.

## Key Terminology & Concepts
Define important terms or concepts introduced (if applicable).

## Conclusion & Final Thoughts
The main message and its broader implications.`

// singlePassPrompt summarizes a transcript that fits in one chunk.
// Args: title, transcript, sections.
const singlePassPrompt = `Create a COMPREHENSIVE, DETAILED structured document summarizing this video based on its transcript.

Video Title: %s

Transcript:
%s

Use the following sections:

%s

Be thorough. Use markdown formatting. Include direct citations from the transcript to support key points.`

// chunkPrompt summarizes one part of a long transcript.
// Args: part, total, title, part, total, chunk.
const chunkPrompt = `Summarize this PART %d of %d of a video transcript.

Video Title: %s

Transcript Part %d/%d:
%s

Create a detailed summary of THIS PART including:
- Key points and concepts discussed
- Direct quotes that are insightful (format as: > "quote")
- Important terminology introduced
- Any actionable insights

Preserve all important details. Use markdown formatting.`

// mergePrompt merges per-part summaries into the final document.
// Args: number of parts, title, combined summaries, sections.
const mergePrompt = `You have been given %d partial summaries from different parts of a video transcript. Create ONE unified document that merges all information logically, removes duplication while preserving unique details, and keeps every direct quote and key term.

Video Title: %s

Partial Summaries:
%s

Use the following sections:

%s

Do NOT lose any important information. Use markdown formatting.`
