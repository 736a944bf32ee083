package gen

import "strings"

// ReservedWords are identifiers user names must never turn into: keywords
// and core library names of the target language, plus the Math and Html
// import prefixes.
var ReservedWords = strings.Split(
	"assert,break,case,catch,class,const,continue,default,do,else,enum,"+
		"extends,false,final,finally,for,if,in,is,new,null,rethrow,return,super,"+
		"switch,this,throw,true,try,var,void,while,with,"+
		"print,identityHashCode,identical,BidirectionalIterator,Comparable,"+
		"double,Function,int,Invocation,Iterable,Iterator,List,Map,Match,num,"+
		"Pattern,RegExp,Set,StackTrace,String,StringSink,Type,bool,DateTime,"+
		"Deprecated,Duration,Expando,Null,Object,RuneIterator,Runes,Stopwatch,"+
		"StringBuffer,Symbol,Uri,Comparator,AbstractClassInstantiationError,"+
		"ArgumentError,AssertionError,CastError,ConcurrentModificationError,"+
		"CyclicInitializationError,Error,Exception,FallThroughError,"+
		"FormatException,IntegerDivisionByZeroException,NoSuchMethodError,"+
		"NullThrownError,OutOfMemoryError,RangeError,StackOverflowError,"+
		"StateError,TypeError,UnimplementedError,UnsupportedError,"+
		"Math,Html", ",")
