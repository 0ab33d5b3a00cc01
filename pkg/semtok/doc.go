/*
Package semtok recognizes Tempest view syntax inside a host document and tags
each recognized piece with a Category.

🎨 What gets recognized:
-----------------------

	{{-- note --}}            Comment (delimiters and body)
	{{ $title }}              SafeInterpStart / SafeInterpContent / SafeInterpEnd
	{!! $html !!}             UnsafeInterpStart / UnsafeInterpContent / UnsafeInterpEnd
	<li :foreach="$a as $b">  LoopName + AttributeValue
	<p :if="$show">           ConditionalName + AttributeValue
	<x-card :title="$t">      AttributeName + AttributeValue

Passes:
-------

The text is scanned once per pass, in a fixed order. Comment and directive
matches claim their range in a position.SpanSet, and later passes drop any
match that touches a claimed range. Interpolations are kept in a second set:
they never overlap each other and no directive name may sit inside one, but a
directive value may contain them.

	  text
	   |
	   v
	+---------+   +------+   +--------+   +-------------+   +------+   +-----------+
	| comment |-->| safe |-->| unsafe |-->| conditional |-->| loop |-->| attribute |
	+---------+   +------+   +--------+   +-------------+   +------+   +-----------+
	   |              |           |              |              |            |
	   +--------------+-----------+--------------+--------------+------------+
	                                     |
	                    claimed + interpolated SpanSets

Comments win over everything, so {{-- {{ $x }} --}} is one comment. The
conditional and loop passes run before the generic attribute pass, so :if is
never reported twice.

Because a value and its interpolations are both reported, Classify output may
nest tokens inside an AttributeValue. Flatten cuts the value around them.

Example Usage:
-------------

	tokens := semtok.Classify(store.Current(), content)
	for _, tok := range tokens {
	    fmt.Println(tok.Category, tok.Span.Text(content))
	}

Classify keeps no state between calls and may be called from several
goroutines at once.
*/
package semtok
